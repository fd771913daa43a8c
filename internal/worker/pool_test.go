package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChangeRepo struct {
	records []model.ChangeRecord
	fail    bool
}

func (r *stubChangeRepo) Create(_ context.Context, rec *model.ChangeRecord) error {
	if r.fail {
		return errors.New("audit store write failed")
	}
	r.records = append(r.records, *rec)
	return nil
}

func (r *stubChangeRepo) List(_ context.Context, _ dto.ChangeFilter) ([]model.ChangeRecord, int64, error) {
	return r.records, int64(len(r.records)), nil
}

func TestRelogWorkerReconcilesRecord(t *testing.T) {
	repo := &stubChangeRepo{}
	w := NewRelogWorker(repo)

	rec := model.ChangeRecord{
		ID:               uuid.New(),
		ProductID:        uuid.New(),
		ProductName:      "Coca-Cola 2L",
		Type:             model.ChangeAdd,
		Quantity:         20,
		PreviousQuantity: 50,
		NewQuantity:      70,
		Operator:         "maria",
	}
	payload, err := json.Marshal(rec)
	require.NoError(t, err)

	require.NoError(t, w.Process(context.Background(), payload))

	require.Len(t, repo.records, 1)
	assert.Equal(t, rec.ID, repo.records[0].ID) // identity survives the queue round-trip
	assert.Equal(t, 70, repo.records[0].NewQuantity)
}

func TestRelogWorkerPropagatesStoreFailure(t *testing.T) {
	w := NewRelogWorker(&stubChangeRepo{fail: true})

	payload, _ := json.Marshal(model.ChangeRecord{ID: uuid.New()})
	assert.Error(t, w.Process(context.Background(), payload))
}

func TestRelogWorkerRejectsMalformedPayload(t *testing.T) {
	repo := &stubChangeRepo{}
	w := NewRelogWorker(repo)

	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{not json`)))
	assert.Empty(t, repo.records)
}
