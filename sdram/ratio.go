package sdram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRatio is returned when a controller:PHY clock ratio cannot be
// used.
var ErrInvalidRatio = errors.New("sdram: invalid frequency ratio")

// Ratio is the controller to PHY frequency ratio, written "1:4". The PHY
// side equals the number of DFI phases presented per controller cycle.
type Ratio struct {
	Controller int
	Phy        int
}

// ParseRatio parses "1:1", "1:2" or "1:4".
func ParseRatio(s string) (Ratio, error) {
	left, right, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return Ratio{}, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}

	c, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}

	p, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}

	r := Ratio{Controller: c, Phy: p}
	if err := r.Validate(); err != nil {
		return Ratio{}, err
	}

	return r, nil
}

// MustParseRatio is ParseRatio for constant inputs. It panics on error.
func MustParseRatio(s string) Ratio {
	r, err := ParseRatio(s)
	if err != nil {
		panic(err)
	}

	return r
}

// Validate checks that the ratio is one the PHYs support.
func (r Ratio) Validate() error {
	if r.Controller != 1 {
		return fmt.Errorf("%w: controller side must be 1, got %d",
			ErrInvalidRatio, r.Controller)
	}

	switch r.Phy {
	case 1, 2, 4:
		return nil
	default:
		return fmt.Errorf("%w: PHY side must be 1, 2 or 4, got %d",
			ErrInvalidRatio, r.Phy)
	}
}

// NumPhases returns the number of DFI phases per controller cycle.
func (r Ratio) NumPhases() int {
	return r.Phy
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d:%d", r.Controller, r.Phy)
}
