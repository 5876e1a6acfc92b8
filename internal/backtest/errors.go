package backtest

import (
	"fmt"
	"time"
)

// CycleError reports a model failure inside one walk-forward cycle
type CycleError struct {
	Cutoff    time.Time
	TestEnd   time.Time
	TrainRows int
	Err       error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("walk-forward cycle cutoff=%s test_end=%s train_rows=%d: %v",
		e.Cutoff.Format(dateLayout), e.TestEnd.Format(dateLayout), e.TrainRows, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}
