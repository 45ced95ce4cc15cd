package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"signsight/internal/config"
	"signsight/internal/metadata"
	"signsight/pkg/log"
)

var (
	historyStart int
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List processed videos",
	Run: func(cmd *cobra.Command, args []string) {
		runHistory()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyStart, "start", 0, "Offset of the first record")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of records to print")
}

func runHistory() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	db, err := metadata.NewMetadataDB(conf.MetadataDir(), log.NewLogger().WithField("component", "metadata"))
	if err != nil {
		logrus.WithError(err).Fatal("open metadata db")
	}
	defer db.Close()

	videos, total, err := db.ListVideos(historyStart, historyLimit)
	if err != nil {
		logrus.WithError(err).Fatal("list videos")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tSIZE\tFRAMES\tDETECTIONS\tDURATION\tCREATED")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%d\t%dms\t%s\n",
			v.Name, v.Source, v.Width, v.Height, v.FramesWritten, v.Detections, v.DurationMs, v.CreateTime)
	}
	w.Flush()
	fmt.Printf("%d of %d records\n", len(videos), total)
}
