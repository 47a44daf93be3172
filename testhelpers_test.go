//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/agrifair/service-rental/internal/application"
	equipmentDomain "github.com/agrifair/service-rental/internal/domain/equipment"
	farmerDomain "github.com/agrifair/service-rental/internal/domain/farmer"
	"github.com/agrifair/service-rental/internal/events"
	"github.com/agrifair/service-rental/internal/repository"
	"github.com/agrifair/service-rental/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds wired-up rental service components.
type rentalStack struct {
	Service         *application.RentalService
	Consumer        *application.PaymentEventConsumer
	CleanupProducer func()
}

// noopCache satisfies application.AvailabilityCache without Redis; the
// cache is not under test here.
type noopCache struct{}

func (noopCache) Invalidate(context.Context) {}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a
// connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.FarmerModel{},
		&repository.EquipmentModel{},
		&repository.RentalModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create topics so group joins do not race topic auto-creation.
	createTopics(t, kafkaBrokers, events.TopicRentalEvents, events.TopicPaymentEvents)

	cleanup := func() {
		_ = kafkaContainer.Terminate(ctx)
		_ = pgContainer.Terminate(ctx)
	}
	return &testInfra{DB: db, KafkaBrokers: kafkaBrokers, Cleanup: cleanup}
}

func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	configs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		configs[i] = kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
	}
	require.NoError(t, controllerConn.CreateTopics(configs...))
}

// setupRentalStack wires a RentalService and payment consumer against the
// test containers.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string) *rentalStack {
	t.Helper()
	log := zap.NewNop()

	producer := kafka.NewProducer(brokers, log)
	service := application.NewRentalService(
		repository.NewGormUnitOfWork(db),
		repository.NewGormRentalRepository(db),
		producer,
		noopCache{},
		log,
	)

	groupID := "test." + uuid.NewString()
	consumer := application.NewPaymentEventConsumer(
		kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, log),
		service,
		log,
	)

	return &rentalStack{
		Service:         service,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedFarmer inserts a farmer profile directly through the repository.
func seedFarmer(t *testing.T, db *gorm.DB, firstName, email, phone string) *farmerDomain.Farmer {
	t.Helper()
	f, err := farmerDomain.NewFarmer(firstName, "", email, phone, "Nakuru", "Njoro")
	require.NoError(t, err)
	require.NoError(t, repository.NewGormFarmerRepository(db).Save(context.Background(), f))
	return f
}

// seedEquipment inserts an available equipment listing.
func seedEquipment(t *testing.T, db *gorm.DB, ownerID uuid.UUID, rate int64) *equipmentDomain.Equipment {
	t.Helper()
	eq, err := equipmentDomain.NewEquipment(ownerID, "tractor", "MF 240", rate, "")
	require.NoError(t, err)
	require.NoError(t, repository.NewGormEquipmentRepository(db).Save(context.Background(), eq))
	return eq
}

// waitForRentalStatus polls until the rental row reaches the wanted status.
func waitForRentalStatus(t *testing.T, db *gorm.DB, rentalID uuid.UUID, status string, timeout time.Duration) repository.RentalModel {
	t.Helper()
	var model repository.RentalModel
	require.Eventually(t, func() bool {
		if err := db.First(&model, "id = ?", rentalID).Error; err != nil {
			return false
		}
		return model.Status == status
	}, timeout, 200*time.Millisecond, "rental %s never reached status %q", rentalID, status)
	return model
}

// publishTestEvent writes one CloudEvent to the topic.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, payload interface{}) {
	t.Helper()
	producer := kafka.NewProducer(brokers, zap.NewNop())
	defer func() { _ = producer.Close() }()

	event, err := kafka.NewCloudEvent(source, eventType, payload)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	require.NoError(t, producer.PublishEvent(ctx, topic, event))
}

// consumeOneEvent reads the topic from the beginning until it sees an event
// of the wanted type.
func consumeOneEvent(t *testing.T, brokers []string, topic, eventType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		msg, err := reader.ReadMessage(ctx)
		require.NoError(t, err, "no %s event on %s within %s", eventType, topic, timeout)

		event, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if event.Type == eventType {
			return event
		}
	}
}
