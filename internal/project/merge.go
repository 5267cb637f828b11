package project

import "maps"

// Reserved Spec keys written by Merge.
const (
	KeyCustomName = "custom_name"
	KeyAttach     = "attach"
	KeyArgs       = "args"
)

// AttachMode is a tri-state attach override from the command line.
type AttachMode int

const (
	// AttachUnset leaves the decision to the project file or the global default.
	AttachUnset AttachMode = iota
	// AttachOn always attaches.
	AttachOn
	// AttachOff never attaches.
	AttachOff
)

// String returns a human-readable name for the mode.
func (m AttachMode) String() string {
	switch m {
	case AttachOn:
		return "attach"
	case AttachOff:
		return "detach"
	default:
		return "unset"
	}
}

// Overrides are the runtime inputs that take part in building a Project.
type Overrides struct {
	CustomName string
	Attach     AttachMode
	Args       []string
}

// Defaults are global settings used when neither the project file nor
// the overrides decide a value.
type Defaults struct {
	Attach bool
}

// Merge returns a copy of spec with the overrides applied. spec itself is
// not modified. Merge performs no validation.
func Merge(spec Spec, o Overrides, d Defaults) Spec {
	out := make(Spec, len(spec)+3)
	maps.Copy(out, spec)

	if o.CustomName != "" {
		out[KeyCustomName] = o.CustomName
	}

	switch o.Attach {
	case AttachOn:
		out[KeyAttach] = true
	case AttachOff:
		out[KeyAttach] = false
	default:
		if _, ok := spec[KeyAttach]; !ok {
			out[KeyAttach] = d.Attach
		}
	}

	args := make([]string, len(o.Args))
	copy(args, o.Args)
	out[KeyArgs] = args

	return out
}
