package device

// Interface is the CLI-side view of a physical interface. Its one property
// with no MIB equivalent is the quoted friendly name in the running
// configuration.
type Interface struct {
	sw    *Switch
	ID    string
	props PropertyBackend
}

func (i *Interface) ref() Ref {
	return Ref{Kind: KindInterface, ID: i.ID}
}

// Name returns the configured friendly name, or the empty string when none
// is set.
func (i *Interface) Name() (string, error) {
	return i.props.Read(i.ref(), PropName)
}

// SetName configures the friendly name. Only alphanumeric names are legal.
func (i *Interface) SetName(name string) error {
	if name == "" {
		return i.ClearName()
	}
	return i.props.Write(i.ref(), PropName, name)
}

// ClearName deconfigures the friendly name.
func (i *Interface) ClearName() error {
	return i.props.Write(i.ref(), PropName, "")
}
