package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/predict", "200"))
	RecordAPIRequest("POST", "/predict", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/predict", "200"))

	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %v", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)

	if got := testutil.ToFloat64(APIActiveRequests) - start; got != 1 {
		t.Errorf("Expected 1 active request, got %v", got)
	}
	TrackActiveRequest(false)
}

func TestRecordPrediction(t *testing.T) {
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("Drama_Romance"))
	RecordPrediction("Drama_Romance", 72.5)
	if testutil.ToFloat64(PredictionsTotal.WithLabelValues("Drama_Romance"))-before != 1 {
		t.Error("Prediction not counted")
	}

	before = testutil.ToFloat64(PredictionErrors.WithLabelValues("invalid_input"))
	RecordPredictionError("invalid_input")
	if testutil.ToFloat64(PredictionErrors.WithLabelValues("invalid_input"))-before != 1 {
		t.Error("Prediction error not counted")
	}
}

func TestSetModelReplacesPrevious(t *testing.T) {
	SetModel("Naive Bayes", "augmented")
	SetModel("SVM", "augmented")

	if got := testutil.CollectAndCount(ModelInfo); got != 1 {
		t.Errorf("Expected a single model series, got %d", got)
	}
	if testutil.ToFloat64(ModelInfo.WithLabelValues("SVM", "augmented")) != 1 {
		t.Error("Current model should be set")
	}
}

func TestRecordTranslation(t *testing.T) {
	before := testutil.ToFloat64(TranslationFailures.WithLabelValues("google"))
	RecordTranslation("google", time.Millisecond, nil)
	RecordTranslation("google", time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(TranslationFailures.WithLabelValues("google")) - before; got != 1 {
		t.Errorf("Expected 1 failure, got %v", got)
	}

	SetBreakerState("google", 2)
	if testutil.ToFloat64(TranslationBreakerState.WithLabelValues("google")) != 2 {
		t.Error("Breaker state not recorded")
	}
}
