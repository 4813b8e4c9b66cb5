package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		event, err := FromJSON(val)
		if err != nil {
			return err
		}
		if event.Type != EventListingSold {
			return errors.New("unexpected event type " + string(event.Type))
		}
		if len(event.Subjects) != 2 {
			return errors.New("expected buyer and seller as subjects")
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "marketplace-events")
	event := NewEvent(EventListingSold, "bea", "ana")
	event.ListingID = "l-1"
	event.Amount = "80.00"

	require.NoError(t, pub.Publish(context.Background(), event))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, "marketplace-events")
	err := pub.Publish(context.Background(), NewEvent(EventTicketRedeemed, "ana"))

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestNewEvent_DeduplicatesSubjects(t *testing.T) {
	event := NewEvent(EventTicketTransferred, "ana", "bea", "ana", "")
	assert.Equal(t, []string{"ana", "bea"}, event.Subjects)
}

func TestPartitionKey_PrefersCatalogEvent(t *testing.T) {
	event := NewEvent(EventTicketRedeemed, "ana")
	assert.Equal(t, "ana", event.PartitionKey())

	event.TicketID = "t-1"
	assert.Equal(t, "t-1", event.PartitionKey())

	event.EventID = "e-1"
	assert.Equal(t, "e-1", event.PartitionKey())
}

func TestLogPublisher_RecordsActivity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	pub := NewLogPublisher(repo)

	event := NewEvent(EventCounterofferAccepted, "ana", "bea")
	require.NoError(t, pub.Publish(ctx, event))

	for _, login := range []string{"ana", "bea"} {
		records, err := repo.ListByLogin(ctx, login, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, EventCounterofferAccepted, records[0].Type)
		assert.Equal(t, "ana", records[0].Actor)
	}
}
