package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"signsight/internal/config"
	"signsight/internal/detector"
	"signsight/internal/metadata"
	"signsight/internal/processor"
	"signsight/internal/publisher"
	"signsight/internal/server"
	"signsight/pkg/log"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload server",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func runServe() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	logrus.Infof("config: %+v", conf.Redacted())

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	det, err := detector.NewTritonDetector(conf.Triton)
	if err != nil {
		logrus.WithError(err).Fatal("new triton detector")
	}
	readyCtx, readyCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := det.Ready(readyCtx); err != nil {
		logrus.WithError(err).Warnf("triton model %s not ready yet, uploads will fail until it is", conf.Triton.ModelName)
	}
	readyCancel()

	proc := processor.NewProcessor(det, conf.Processor, conf.UploadDir)

	db, err := metadata.NewMetadataDB(conf.MetadataDir(), log.NewLogger().WithField("component", "metadata"))
	if err != nil {
		logrus.WithError(err).Fatal("open metadata db")
	}
	defer db.Close()

	pub, err := publisher.NewPublisher(conf)
	if err != nil {
		logrus.WithError(err).Fatal("new publisher")
	}
	defer pub.Stop()

	var videoPublisher server.VideoPublisher
	if pub.Enabled() {
		if err := pub.EnsureBucket(ctx); err != nil {
			logrus.WithError(err).Fatal("ensure bucket")
		}
		videoPublisher = pub
	}

	srv, err := server.NewServer(ctx, conf, proc, db, videoPublisher)
	if err != nil {
		logrus.Fatalf("newServer error, %s", err.Error())
		return
	}
	go srv.Start()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("server is shutting down...")
	srv.Shutdown()
}
