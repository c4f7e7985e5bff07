package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"humesync/internal/adapters/kafka"
	"humesync/pkg/errors"
)

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) Publish(ctx context.Context, topic string, key string, event interface{}) error {
	args := m.Called(ctx, topic, key, event)
	return args.Error(0)
}

func TestPublisher_AgentSynced(t *testing.T) {
	producer := new(mockProducer)
	pub := NewPublisher(producer, "test")
	id := uuid.New()

	producer.On("Publish", mock.Anything, kafka.TopicAgentSynced, id.String(), mock.MatchedBy(func(e AgentSyncedEvent) bool {
		return e.AgentID == id &&
			e.RemoteConfigID == "cfg-1" &&
			e.Operation == "create" &&
			e.Type == kafka.TopicAgentSynced &&
			e.Source == "test" &&
			e.ID != ""
	})).Return(nil).Once()

	require.NoError(t, pub.PublishAgentSynced(context.Background(), id, "Closer", "cfg-1", "create"))
	producer.AssertExpectations(t)
}

func TestPublisher_WrapsProducerError(t *testing.T) {
	producer := new(mockProducer)
	pub := NewPublisher(producer, "test")

	producer.On("Publish", mock.Anything, kafka.TopicAgentDeleted, mock.Anything, mock.Anything).
		Return(errors.ErrUnavailable).Once()

	err := pub.PublishAgentDeleted(context.Background(), uuid.New(), "Closer", "cfg-1", true)
	assert.ErrorIs(t, err, errors.ErrUnavailable)
}

func TestPublisher_SyncFailedSanitizesError(t *testing.T) {
	producer := new(mockProducer)
	pub := NewPublisher(producer, "test")

	producer.On("Publish", mock.Anything, kafka.TopicAgentSyncFailed, mock.Anything, mock.MatchedBy(func(e AgentSyncFailedEvent) bool {
		return e.Error == "bad body"
	})).Return(nil).Once()

	require.NoError(t, pub.PublishSyncFailed(context.Background(), uuid.New(), "Closer", "create", errors.New("bad\xff body")))
	producer.AssertExpectations(t)
}

func TestPublisher_ReconciledUsesEmptyLists(t *testing.T) {
	producer := new(mockProducer)
	pub := NewPublisher(producer, "test")

	producer.On("Publish", mock.Anything, kafka.TopicAgentReconciled, "reconcile", mock.MatchedBy(func(e ReconciledEvent) bool {
		return e.Checked == 2 && e.Missing != nil && len(e.Orphaned) == 1
	})).Return(nil).Once()

	require.NoError(t, pub.PublishReconciled(context.Background(), 2, nil, []string{"cfg-x"}))
	producer.AssertExpectations(t)
}

func TestPublisher_NilProducerIsNoop(t *testing.T) {
	pub := NewPublisher(nil, "test")
	assert.NoError(t, pub.PublishAgentSynced(context.Background(), uuid.New(), "a", "b", "create"))

	var nilPub *Publisher
	assert.NoError(t, nilPub.PublishReconciled(context.Background(), 0, nil, nil))
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "Hello, World!", SanitizeUTF8("Hello, World!"))
	assert.Equal(t, "", SanitizeUTF8(""))
	assert.Equal(t, "HelloWorld", SanitizeUTF8("Hello\xffWorld"))
	assert.Equal(t, "StartMiddleEnd", SanitizeUTF8("Start\xffMiddle\xfeEnd\xfd"))
}
