package dispatch

import (
	"time"
)

//Retrier retries a single file transfer operation with linearly increasing
//backoff: attempt N failure is followed by a N*backoff pause.
type Retrier struct {
	maxAttempts int
	backoff     time.Duration
	sleep       func(time.Duration)
}

func NewRetrier(maxAttempts int, backoff time.Duration) *Retrier {
	return &Retrier{maxAttempts: maxAttempts, backoff: backoff, sleep: time.Sleep}
}

//Do runs op until it succeeds or attempts are exhausted.
//Returns nil on the first success, otherwise the last observed error.
func (r *Retrier) Do(op func() error) error {
	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt < r.maxAttempts {
			r.sleep(time.Duration(attempt) * r.backoff)
		}
	}
	return err
}
