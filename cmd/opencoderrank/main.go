// Command opencoderrank runs the evaluation worker: it consumes learner
// submissions from Kafka, evaluates them inside the configured sandbox and
// publishes the resulting verdicts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Shounaks/OpenCoderRank/internal/app/evaluator"
	kafkainfra "github.com/Shounaks/OpenCoderRank/internal/infra/kafka"
	"github.com/Shounaks/OpenCoderRank/internal/ports"
	dockersandbox "github.com/Shounaks/OpenCoderRank/internal/sandbox/docker"
	processsandbox "github.com/Shounaks/OpenCoderRank/internal/sandbox/process"
	"github.com/Shounaks/OpenCoderRank/internal/workspace"
)

func main() {
	var conf Config
	if err := conf.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger := newLogger(&conf)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sandbox, err := newSandbox(&conf)
	if err != nil {
		logger.Fatal("initialize sandbox", zap.String("backend", conf.SandboxBackend), zap.Error(err))
	}

	service := evaluator.NewService(workspace.NewManager(conf.ScratchRoot), sandbox)
	defer func() {
		if cerr := service.Close(); cerr != nil {
			logger.Warn("close evaluator", zap.Error(cerr))
		}
	}()

	consumer, err := kafkainfra.NewConsumer(kafkainfra.Config{
		Brokers: conf.Brokers(),
		Topic:   conf.SubmissionsTopic,
		GroupID: conf.GroupID,
	})
	if err != nil {
		logger.Fatal("initialize kafka consumer", zap.Error(err))
	}
	defer func() {
		if cerr := consumer.Close(); cerr != nil {
			logger.Warn("close kafka consumer", zap.Error(cerr))
		}
	}()

	publisher, err := kafkainfra.NewPublisher(kafkainfra.PublisherConfig{
		Brokers: conf.Brokers(),
		Topic:   conf.VerdictsTopic,
	})
	if err != nil {
		logger.Fatal("initialize kafka publisher", zap.Error(err))
	}
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Warn("close kafka publisher", zap.Error(cerr))
		}
	}()

	logger.Info("evaluator started",
		zap.String("backend", conf.SandboxBackend),
		zap.String("image", conf.SandboxImage),
		zap.Int("parallelism", conf.Parallelism))

	err = service.EvaluateFromSource(ctx, consumer, conf.MaxJobs, conf.Parallelism, func(jv ports.JobVerdict) {
		logger.Info("submission evaluated",
			zap.String("job", jv.Job.ID),
			zap.String("language", string(jv.Job.Submission.Language)),
			zap.String("status", string(jv.Verdict.Status)),
			zap.Bool("passed_all", jv.Verdict.PassedAll))

		if perr := publisher.PublishVerdict(ctx, jv); perr != nil {
			logger.Error("publish verdict", zap.String("job", jv.Job.ID), zap.Error(perr))
		}
	})
	if err != nil {
		logger.Fatal("evaluation loop failed", zap.Error(err))
	}
}

func newSandbox(conf *Config) (ports.Sandbox, error) {
	switch conf.SandboxBackend {
	case "docker":
		return dockersandbox.New(dockersandbox.Config{Image: conf.SandboxImage})
	case "process":
		return processsandbox.New(), nil
	default:
		return nil, fmt.Errorf("unknown sandbox backend %q", conf.SandboxBackend)
	}
}

func newLogger(conf *Config) *zap.Logger {
	if conf.Silent {
		return zap.NewNop()
	}

	var logger *zap.Logger
	var err error
	if conf.Release {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "create logger:", err)
		os.Exit(1)
	}
	return logger
}
