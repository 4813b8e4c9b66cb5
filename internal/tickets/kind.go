package tickets

// Kind tags the ticket variant
type Kind string

const (
	KindSimple         Kind = "SIMPLE"
	KindDiscountBundle Kind = "DISCOUNT_BUNDLE"
	KindPremiumBundle  Kind = "PREMIUM_BUNDLE"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindSimple, KindDiscountBundle, KindPremiumBundle:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// IsBundle reports whether the kind carries contained tickets
func (k Kind) IsBundle() bool {
	return k == KindDiscountBundle || k == KindPremiumBundle
}
