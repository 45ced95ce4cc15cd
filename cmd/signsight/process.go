package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"signsight/internal/config"
	"signsight/internal/detector"
	"signsight/internal/processor"
)

var (
	outputDir      string
	inferenceWidth int
	confThreshold  float64
)

var processCmd = &cobra.Command{
	Use:   "process <video>",
	Short: "Annotate a local video file",
	Long:  `Run traffic sign detection over a local video and write processed_<name> into the output directory.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runProcess(cmd, args[0])
	},
}

func init() {
	processCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default: next to the input)")
	processCmd.Flags().IntVar(&inferenceWidth, "inference-width", 0, "Downsample frames wider than this before inference")
	processCmd.Flags().Float64Var(&confThreshold, "conf", 0, "Confidence threshold")
}

func runProcess(cmd *cobra.Command, videoPath string) {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}
	if cmd.Flags().Changed("inference-width") {
		conf.Processor.InferenceWidth = inferenceWidth
	}
	if cmd.Flags().Changed("conf") {
		conf.Processor.ConfThreshold = float32(confThreshold)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(videoPath)
	}

	det, err := detector.NewTritonDetector(conf.Triton)
	if err != nil {
		logrus.WithError(err).Fatal("new triton detector")
	}

	ctx := context.Background()
	if err := det.Ready(ctx); err != nil {
		logrus.WithError(err).Fatal("triton not ready")
	}

	result, err := processor.NewProcessor(det, conf.Processor, outputDir).Process(ctx, videoPath)
	if err != nil {
		logrus.WithError(err).Fatalf("process %s", videoPath)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		logrus.Fatal(err)
	}
	fmt.Fprintf(os.Stderr, "annotated video written to %s\n", filepath.Join(outputDir, result.Name))
}
