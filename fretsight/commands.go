package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	debugLogging bool
)

var rootCmd = &cobra.Command{
	Use:   "fretsight",
	Short: "Guitar fretboard visualizer",
	Long: `fretsight plays back an analyzed guitar recording on a virtual fretboard,
showing which string and fret every sounding note is played on.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		log.SetReportTimestamp(true)
		if debugLogging {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.fretsight/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "debug logging")

	rootCmd.AddCommand(playCmd, demoCmd, inspectCmd, planCmd, importCmd, analyzeCmd, serveCmd)

	playCmd.Flags().String("audio", "", "backing track to play along (.ogg or .wav)")
	playCmd.Flags().Int("track", -1, "MIDI track to import (asks when there are several)")
	addPlanningFlags(playCmd)

	demoCmd.Flags().Bool("list", false, "list the embedded demos")
	addPlanningFlags(demoCmd)

	inspectCmd.Flags().Float64("at", 0, "playback time in seconds")
	addPlanningFlags(inspectCmd)

	planCmd.Flags().StringP("output", "o", "", "where to write the planned payload (default stdout)")

	importCmd.Flags().StringP("output", "o", "", "where to write the payload (default stdout)")
	importCmd.Flags().Int("track", -1, "MIDI track to import (default all)")

	analyzeCmd.Flags().StringP("output", "o", "", "where to write the payload (default stdout)")
	analyzeCmd.Flags().String("url", "", "analysis service base URL")

	serveCmd.Flags().String("addr", "", "listen address")
	serveCmd.Flags().Bool("plan", false, "plan fingerings and hand positions before serving")
}

func addPlanningFlags(cmd *cobra.Command) {
	cmd.Flags().Int("manual", -1, "start in manual hand mode at this fret")
	cmd.Flags().Bool("plan", false, "plan fingerings and hand positions locally")
}

func manualFretFlag(cmd *cobra.Command) *int {
	fret, _ := cmd.Flags().GetInt("manual")
	if fret < 0 {
		return nil
	}
	return &fret
}

var playCmd = &cobra.Command{
	Use:   "play <payload.json|song.mid>",
	Short: "Play a transcription on the terminal fretboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stngs, err := loadSettings(configPath)
		if err != nil {
			return err
		}

		options := playOptions{payloadPath: args[0], manualFret: manualFretFlag(cmd)}
		options.audioPath, _ = cmd.Flags().GetString("audio")
		options.track, _ = cmd.Flags().GetInt("track")
		options.plan, _ = cmd.Flags().GetBool("plan")

		if options.audioPath != "" && !isSupportedAudioFile(options.audioPath) {
			return errors.Errorf("unsupported audio file %s (want .ogg or .wav)", options.audioPath)
		}

		title := filepath.Base(options.payloadPath)
		return runTUI(initialLoadModel(title, options, stngs, &audioSpeaker{}))
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo [name]",
	Short: "Play one of the built in demo transcriptions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			names, err := listDemos()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		}

		stngs, err := loadSettings(configPath)
		if err != nil {
			return err
		}

		name := defaultDemo
		if len(args) == 1 {
			name = args[0]
		}
		tr, err := loadDemoTranscription(name)
		if err != nil {
			return err
		}

		options := playOptions{track: -1, manualFret: manualFretFlag(cmd)}
		options.plan, _ = cmd.Flags().GetBool("plan")

		lm := initialLoadModel("demo: "+name, options, stngs, &audioSpeaker{})
		lm.preloaded = tr
		return runTUI(lm)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <payload.json|song.mid>",
	Short: "Print the notes and fingerings resolved at one instant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stngs, err := loadSettings(configPath)
		if err != nil {
			return err
		}
		options := playOptions{payloadPath: args[0], track: -1}
		options.plan, _ = cmd.Flags().GetBool("plan")
		tr, err := prepareTranscription(options, stngs.tuning)
		if err != nil {
			return err
		}

		session := newFretboardSession(tr, stngs)
		if fret := manualFretFlag(cmd); fret != nil {
			session = session.withHands(session.hands.withManual(*fret))
		}
		at, _ := cmd.Flags().GetFloat64("at")
		return writeInspection(cmd.OutOrStdout(), session, at)
	},
}

func writeInspection(w io.Writer, session fretboardSession, t float64) error {
	frame := session.snapshotFrame(t)
	fmt.Fprintf(w, "time %s  hand %s @ fret %d  window %d-%d  tuning %s\n",
		formatPlaybackTime(t), frame.HandMode, frame.CenterFret, frame.WindowLow, frame.WindowHigh, session.tuning)

	if len(frame.Markers) == 0 {
		fmt.Fprintln(w, "nothing sounding")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRING\tFRET\tPITCH\tNOTE\tBEND\tVIBRATO")
	for _, m := range frame.Markers {
		vibrato := "-"
		if m.Vibrato {
			vibrato = fmt.Sprintf("%.2f", m.VibratoDepth)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%+.2f\t%s\n", m.String, m.Fret, m.Pitch, m.Label, m.Bend, vibrato)
	}
	return tw.Flush()
}

// openOutput returns stdout when path is empty.
func openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

func writeOutput(cmd *cobra.Command, tr *transcription) error {
	out, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	if err := WritePayload(out, tr); err != nil {
		closeOut()
		return err
	}
	log.Info("wrote payload", "summary", describeTranscription(tr))
	return closeOut()
}

var planCmd = &cobra.Command{
	Use:   "plan <payload.json|song.mid>",
	Short: "Fill in fingerings and hand positions for a transcription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stngs, err := loadSettings(configPath)
		if err != nil {
			return err
		}
		tr, err := loadTranscriptionFile(args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, planTranscription(tr, stngs.tuning))
	},
}

var importCmd = &cobra.Command{
	Use:   "import <song.mid>",
	Short: "Convert a MIDI file into an analysis payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		track, _ := cmd.Flags().GetInt("track")
		tr, err := importMidiFile(args[0], track)
		if err != nil {
			return err
		}
		return writeOutput(cmd, tr)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <recording>",
	Short: "Send a recording to the analysis service and save the payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stngs, err := loadSettings(configPath)
		if err != nil {
			return err
		}
		if url, _ := cmd.Flags().GetString("url"); url != "" {
			stngs.analysisURL = url
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		tr, err := newAnalysisClient(stngs.analysisURL).analyzeFile(ctx, args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, tr)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve <payload.json|song.mid>",
	Short: "Serve fretboard frames over HTTP and websocket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stngs, err := loadSettings(configPath)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			stngs.listenAddr = addr
		}

		options := playOptions{payloadPath: args[0], track: -1}
		options.plan, _ = cmd.Flags().GetBool("plan")
		tr, err := prepareTranscription(options, stngs.tuning)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return newFrameServer(tr, stngs).listenAndServe(ctx)
	},
}
