// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package training drives the asynchronous train-then-poll workflow: training
// is triggered with one call, then status is polled at a fixed cadence until
// every model lands in a terminal state.
package training

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"parley/internal/logger"
)

// Per-model training statuses reported by the service.
const (
	StatusQueued     = "Queued"
	StatusInProgress = "InProgress"
	StatusSuccess    = "Success"
	StatusUpToDate   = "UpToDate"
	StatusFail       = "Fail"
)

// PollInterval is the fixed delay between status rounds.
const PollInterval = 1000 * time.Millisecond

// ModelStatus is one model's entry in a training status report.
type ModelStatus struct {
	ModelID string        `json:"modelId"`
	Details StatusDetails `json:"details"`
}

// StatusDetails carries the model's current status and, on failure, the reason.
type StatusDetails struct {
	Name          string `json:"name,omitempty"`
	Status        string `json:"status"`
	FailureReason string `json:"failureReason,omitempty"`
}

// Report is the per-model status list returned by one status call. It is
// produced fresh each round; nothing is retained between rounds.
type Report []ModelStatus

// ParseReport converts a decoded JSON status result into a Report.
func ParseReport(v any) (Report, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode status result: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unexpected training status shape: %w", err)
	}
	return r, nil
}

// StatusFunc issues one status-check call.
type StatusFunc func() (Report, error)

// Poller polls a status operation until training reaches a terminal state.
type Poller struct {
	// Status issues one status-check call per round.
	Status StatusFunc

	// Interval is the delay between rounds; zero means PollInterval.
	Interval time.Duration

	// Progress receives one "trained/total" line per round. Nil discards.
	Progress io.Writer
}

// Wait polls until every model reports Success or UpToDate, or one reports
// Fail. A failed status call aborts immediately; there is no retry. The loop
// has no iteration cap and no deadline: termination is server-driven, by
// completion or by a fatal model failure.
func (p *Poller) Wait() (Report, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = PollInterval
	}
	progress := p.Progress
	if progress == nil {
		progress = io.Discard
	}

	for {
		report, err := p.Status()
		if err != nil {
			return nil, err
		}

		trained := 0
		complete := true
		for _, m := range report {
			status := m.Details.Status
			if status == StatusFail {
				return nil, &FailureError{ModelID: m.ModelID, Reason: m.Details.FailureReason}
			}
			if status == StatusInProgress || status == StatusQueued {
				// The first model still in flight settles the round; the
				// rest are left unscanned until the next poll.
				complete = false
				break
			}
			trained++
		}

		fmt.Fprintf(progress, "%d/%d models trained\n", trained, len(report))
		logger.Debugf("Training round: %d/%d models trained", trained, len(report))

		if complete {
			logger.Infof("Training complete: %d models trained", trained)
			return report, nil
		}

		time.Sleep(interval)
	}
}

// FailureError reports a model whose training ended in Fail.
type FailureError struct {
	ModelID string
	Reason  string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("training failed for model %s: %s", e.ModelID, e.Reason)
}
