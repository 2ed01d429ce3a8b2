package clinicapi

import (
	"fmt"
	"time"
)

// ThrottleError возвращается, когда коллаборатор ответил 429 и сообщил
// Retry-After. Ретраи используют эту задержку вместо экспоненциального бэкоффа.
type ThrottleError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("throttled: retry after %v (cause: %v)", e.RetryAfter, e.Cause)
}
