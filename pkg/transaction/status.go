package transaction

// Status is the position of a transaction in its lifecycle. Transitions only
// go forward: Unsigned -> Signed -> Submitted.
type Status int

const (
	StatusUnsigned Status = iota
	StatusSigned
	StatusSubmitted
)

func (s Status) String() string {
	switch s {
	case StatusUnsigned:
		return "unsigned"
	case StatusSigned:
		return "signed"
	case StatusSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

type lifecycle struct {
	status Status
}

// Status returns the current lifecycle state.
func (l *lifecycle) Status() Status {
	return l.status
}

// MarkSubmitted records that the signed transaction has been handed over to
// the network.
func (l *lifecycle) MarkSubmitted() error {
	if l.status != StatusSigned {
		return ErrNotSigned
	}
	l.status = StatusSubmitted
	return nil
}

func (l *lifecycle) sign(signature []byte) error {
	if l.status != StatusUnsigned {
		return ErrAlreadySigned
	}
	if len(signature) != SignatureLen {
		return ErrInvalidSignatureLength
	}
	l.status = StatusSigned
	return nil
}
