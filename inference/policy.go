package inference

import "fmt"

// BusyPolicy decides what happens when a detection is requested while
// another is in flight.
type BusyPolicy string

const (
	// BusyPolicyReject fails the overlapping call immediately with ErrBusy.
	BusyPolicyReject BusyPolicy = "reject"
	// BusyPolicyBlock waits for the in-flight call to finish.
	BusyPolicyBlock BusyPolicy = "block"
)

// Validate checks the policy is known. The empty policy is treated as reject.
func (p BusyPolicy) Validate() error {
	switch p {
	case BusyPolicyReject, BusyPolicyBlock, "":
		return nil
	default:
		return fmt.Errorf("unknown busy policy %q", string(p))
	}
}
