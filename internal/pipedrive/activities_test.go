package pipedrive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityCreateValidation(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	_, err := client.Activities.Create(ctx, &ActivityInput{})
	assert.ErrorContains(t, err, "subject")

	_, err = client.Activities.Create(ctx, &ActivityInput{Subject: String("Call Ada")})
	assert.ErrorContains(t, err, "type")
}

func TestActivityCreateSendsPayload(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleData("POST /api/v2/activities", map[string]any{"id": 11})

	_, err := client.Activities.Create(context.Background(), &ActivityInput{
		Subject:  String("Call Ada"),
		Type:     String("call"),
		DueDate:  String("2025-01-15"),
		DueTime:  String("14:30"),
		Duration: String("01:00"),
		Busy:     Bool(false),
		Participants: []map[string]any{
			{"person_id": 5, "primary_flag": true},
		},
	})
	require.NoError(t, err)

	req := fake.LastRequest(t)
	assert.Equal(t, "call", req.Body["type"])
	assert.Equal(t, "14:30", req.Body["due_time"])
	// busy=false must survive serialization, not be dropped as a zero value.
	assert.Equal(t, false, req.Body["busy"])
	participants, ok := req.Body["participants"].([]any)
	require.True(t, ok)
	assert.Len(t, participants, 1)
}

func TestActivityListOptionValidation(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	_, _, err := client.Activities.List(ctx, ActivityListOptions{Limit: 0})
	assert.ErrorContains(t, err, "limit")

	_, _, err = client.Activities.List(ctx, ActivityListOptions{Limit: 501})
	assert.ErrorContains(t, err, "limit")

	_, _, err = client.Activities.List(ctx, ActivityListOptions{Limit: 100, SortDirection: "up"})
	assert.ErrorContains(t, err, "sort_direction")

	_, _, err = client.Activities.List(ctx, ActivityListOptions{Limit: 100, SortBy: "subject"})
	assert.ErrorContains(t, err, "sort_by")
}

func TestActivityUpdateRequiresField(t *testing.T) {
	client, _ := testClient(t)
	_, err := client.Activities.Update(context.Background(), 4, &ActivityInput{})
	assert.ErrorContains(t, err, "at least one field")
}

func TestActivityDeleteFailureIsError(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleError("DELETE /api/v2/activities/9", 404, "Activity not found", "")

	_, err := client.Activities.Delete(context.Background(), 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Activity not found")
}

func TestActivityTypesUseV1(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleData("GET /v1/activityTypes", []any{map[string]any{"name": "Call"}})

	types, err := client.Activities.Types(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 1)
	assert.Equal(t, "/v1/activityTypes", fake.LastRequest(t).Path)
}

func TestCreateActivityTypeValidation(t *testing.T) {
	client, fake := testClient(t)
	ctx := context.Background()

	_, err := client.Activities.CreateType(ctx, &ActivityTypeInput{})
	assert.ErrorContains(t, err, "name")

	_, err = client.Activities.CreateType(ctx, &ActivityTypeInput{Name: "Demo"})
	assert.ErrorContains(t, err, "icon_key")

	fake.HandleData("POST /v1/activityTypes", map[string]any{"id": 3})
	_, err = client.Activities.CreateType(ctx, &ActivityTypeInput{Name: "Demo", IconKey: "presentation"})
	require.NoError(t, err)
}
