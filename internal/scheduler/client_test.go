package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(testSchedulerConfig{})
	require.Error(t, err)
}

func TestScheduleConfirmationDeadline(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{
		redisURL: "redis://" + srv.Addr(),
		queue:    "maintenance",
	})
	require.NoError(t, err)
	defer client.Close()

	payload := ConfirmationDeadlinePayload{RecordID: uuid.NewString()}
	runAt := time.Now().Add(48 * time.Hour)

	err = client.ScheduleConfirmationDeadline(context.Background(), payload, runAt)
	require.NoError(t, err)

	// asynq stores future tasks in the queue's scheduled set.
	members, err := srv.ZMembers("asynq:{maintenance}:scheduled")
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestNilClientIsNoop(t *testing.T) {
	var client *Client
	err := client.ScheduleConfirmationDeadline(context.Background(), ConfirmationDeadlinePayload{RecordID: uuid.NewString()}, time.Now())
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
