package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-risk-gateway/internal/domain"
)

func TestStoreOps_CountedByOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(storeOps.WithLabelValues("record", "ok"))
	missBefore := testutil.ToFloat64(storeOps.WithLabelValues("record", string(MissingRisk)))
	writeBefore := testutil.ToFloat64(storeOps.WithLabelValues("record", string(WriteFailed)))
	readBefore := testutil.ToFloat64(storeOps.WithLabelValues("latest", string(ReadFailed)))

	fake := &fakeAssessmentRepo{}
	svc := NewAssessmentService(nil, fake, 5)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordInput{Address: "0xA", Risk: "Low", Payload: domain.Payload(`{}`)})
	require.NoError(t, err)
	_, err = svc.Record(ctx, RecordInput{Address: "0xA", Payload: domain.Payload(`{}`)})
	require.Error(t, err)

	fake.createErr = errors.New("disk full")
	_, err = svc.Record(ctx, RecordInput{Address: "0xA", Risk: "Low", Payload: domain.Payload(`{}`)})
	require.Error(t, err)

	fake.listErr = errors.New("locked")
	_, err = svc.Latest(ctx, 5)
	require.Error(t, err)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(storeOps.WithLabelValues("record", "ok")))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(storeOps.WithLabelValues("record", string(MissingRisk))))
	assert.Equal(t, writeBefore+1, testutil.ToFloat64(storeOps.WithLabelValues("record", string(WriteFailed))))
	assert.Equal(t, readBefore+1, testutil.ToFloat64(storeOps.WithLabelValues("latest", string(ReadFailed))))
}

func Test_countStoreOp_UnknownError(t *testing.T) {
	before := testutil.ToFloat64(storeOps.WithLabelValues("latest", "error"))
	countStoreOp("latest", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(storeOps.WithLabelValues("latest", "error")))
}
