// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestResult(t *testing.T) {
	if Result(nil) != "ok" {
		t.Error("nil error should be ok")
	}
	if Result(errors.New("x")) != "failed" {
		t.Error("error should be failed")
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	Dispatches.WithLabelValues("metrics_test").Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `strepitus_dispatches_total{program="metrics_test"}`) {
		t.Error("dispatch counter not exposed")
	}
}

func TestHandlerExposesPasses(t *testing.T) {
	ObservePass("metrics_test", time.Now())
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `strepitus_pass_seconds_count{pass="metrics_test"}`) {
		t.Error("pass histogram not exposed")
	}
}
