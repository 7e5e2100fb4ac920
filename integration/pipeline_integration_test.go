//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	kafkatc "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/Shounaks/OpenCoderRank/internal/app/evaluator"
	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
	kafkainfra "github.com/Shounaks/OpenCoderRank/internal/infra/kafka"
	"github.com/Shounaks/OpenCoderRank/internal/ports"
	"github.com/Shounaks/OpenCoderRank/internal/sandbox/docker"
	"github.com/Shounaks/OpenCoderRank/internal/testhelpers"
	"github.com/Shounaks/OpenCoderRank/internal/workspace"
)

func TestPipelineEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	kafkaContainer, err := kafkatc.Run(ctx, "confluentinc/confluent-local:7.7.0")
	if err != nil {
		t.Skipf("kafka container unavailable: %v", err)
	}
	defer kafkaContainer.Terminate(context.Background())

	brokers, err := kafkaContainer.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to obtain broker addresses: %v", err)
	}
	if len(brokers) == 0 {
		t.Fatal("no brokers returned by kafka container")
	}
	broker := brokers[0]

	const (
		submissionsTopic = "integration-submissions"
		verdictsTopic    = "integration-verdicts"
	)

	if err := testhelpers.WaitForKafkaBroker(ctx, broker); err != nil {
		t.Fatalf("wait for kafka broker: %v", err)
	}
	if err := testhelpers.ProvisionKafkaTopics(ctx, broker, submissionsTopic, verdictsTopic); err != nil {
		t.Fatalf("provision topics: %v", err)
	}

	sandbox, err := docker.New(docker.Config{Image: "python:3.9-slim"})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	service := evaluator.NewService(workspace.NewManager(t.TempDir()), sandbox)
	defer service.Close()

	consumer, err := kafkainfra.NewConsumer(kafkainfra.Config{
		Brokers: []string{broker},
		Topic:   submissionsTopic,
		GroupID: "pipeline-integration-consumer",
	})
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	defer consumer.Close()

	publisher, err := kafkainfra.NewPublisher(kafkainfra.PublisherConfig{
		Brokers: []string{broker},
		Topic:   verdictsTopic,
	})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()

	errCh := make(chan error, 1)
	sendErr := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	go func() {
		defer workerCancel()
		err := service.EvaluateFromSource(workerCtx, consumer, 1, 1, func(jv ports.JobVerdict) {
			if pubErr := publisher.PublishVerdict(workerCtx, jv); pubErr != nil {
				sendErr(fmt.Errorf("publish verdict: %w", pubErr))
				workerCancel()
			}
		})
		sendErr(err)
	}()

	submissionID := "pipeline-submission"
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(broker),
		Topic:                  submissionsTopic,
		AllowAutoTopicCreation: false,
		Balancer:               &kafkago.LeastBytes{},
	}
	defer writer.Close()

	payload, err := json.Marshal(map[string]any{
		"type":     "submission",
		"id":       submissionID,
		"language": "code",
		"source":   "def double(n):\n    return n * 2\n",
		"spec": map[string]any{
			"test_cases": []map[string]any{
				{"name": "Test 1", "input_args": []any{3}, "expected_output": 6},
				{"name": "Test 2", "input_args": []any{0}, "expected_output": 0},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal submission payload: %v", err)
	}

	if err := writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(submissionID),
		Value: payload,
	}); err != nil {
		t.Fatalf("write submission message: %v", err)
	}

	verdictsReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{broker},
		Topic:   verdictsTopic,
		GroupID: "pipeline-integration-verdicts",
	})
	defer verdictsReader.Close()

	msgCtx, msgCancel := context.WithTimeout(ctx, time.Minute)
	defer msgCancel()

	msg, err := verdictsReader.ReadMessage(msgCtx)
	if err != nil {
		t.Fatalf("read verdict message: %v", err)
	}

	var envelope struct {
		ID         string                      `json:"id"`
		Status     evaluation.Status           `json:"status"`
		PassedAll  bool                        `json:"passed_all"`
		ReportHTML string                      `json:"report_html"`
		Tests      []evaluation.TestCaseResult `json:"tests"`
		Timestamp  time.Time                   `json:"timestamp"`
	}
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		t.Fatalf("decode verdict message: %v", err)
	}

	if envelope.ID != submissionID {
		t.Fatalf("expected verdict for %q, got %q", submissionID, envelope.ID)
	}
	if envelope.Status != evaluation.StatusCorrect {
		t.Fatalf("expected correct verdict, got %q (report: %s)", envelope.Status, envelope.ReportHTML)
	}
	if !envelope.PassedAll {
		t.Fatal("expected all tests to pass")
	}
	if len(envelope.Tests) != 2 {
		t.Fatalf("expected 2 test results, got %d", len(envelope.Tests))
	}
	for _, test := range envelope.Tests {
		if !test.Passed {
			t.Fatalf("test %q failed: %+v", test.Name, test)
		}
	}
	if envelope.ReportHTML == "" {
		t.Fatal("verdict must carry a rendered report")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("pipeline evaluation error: %v", err)
	}
}
