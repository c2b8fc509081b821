package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Downstream aggregators distinguish "absent" from "zero"; the optional
// fields must disappear from the payload entirely.
func TestRatingEventWireShape(t *testing.T) {
	rating := 5
	old := 3

	created, err := json.Marshal(RatingEvent{Type: RatingEventCreated, ProductID: 7, Rating: &rating})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"created","productId":7,"rating":5}`, string(created))

	updated, err := json.Marshal(RatingEvent{Type: RatingEventUpdated, ProductID: 7, Rating: &rating, OldRating: &old})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"updated","productId":7,"rating":5,"oldRating":3}`, string(updated))

	deleted, err := json.Marshal(RatingEvent{Type: RatingEventDeleted, ProductID: 7, OldRating: &old})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"deleted","productId":7,"oldRating":3}`, string(deleted))
}
