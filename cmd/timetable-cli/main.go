// Command timetable-cli generates a weekly timetable from a JSON request file
// and prints one grid per class. It does not touch the database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/AayusX/Smart-Mavi-sub000/internal/dto"
	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/internal/service"
	"github.com/AayusX/Smart-Mavi-sub000/internal/timetable"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/config"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/export"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/logger"
)

func main() {
	var (
		input    = flag.String("input", "", "path to a generate request JSON file (- for stdin)")
		seed     = flag.Int64("seed", 0, "random seed; 0 picks one from the clock")
		csvPath  = flag.String("csv", "", "write the timetable as CSV to this path")
		pdfPath  = flag.String("pdf", "", "write the timetable as PDF to this path")
		view     = flag.String("view", string(models.ExportViewGrid), "export layout: entries, grid or teacher-grid")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logr, err := logger.NewConsole(*logLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	req, err := readRequest(*input)
	if err != nil {
		logr.Fatal("failed to read request", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logr.Fatal("failed to load config", zap.Error(err))
	}
	genCfg, err := service.BuildGeneratorConfig(req, cfg.Scheduler.Defaults)
	if err != nil {
		logr.Fatal("invalid request", zap.Error(err))
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	generator := timetable.NewGenerator(genCfg, timetable.WithSeed(*seed), timetable.WithLogger(logr))
	result := generator.Generate()
	slots := generator.TimeSlots()

	logr.Info("timetable generated",
		zap.Int64("seed", *seed),
		zap.Int("placed", result.Report.Placed),
		zap.Int("demand_units", result.Report.DemandUnits),
		zap.Int("dropped", len(result.Report.Dropped)),
		zap.Int("quality", result.Report.Quality),
	)

	classes := append([]timetable.ClassInfo(nil), genCfg.Classes...)
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	for _, class := range classes {
		printGrid(os.Stdout, timetable.ClassGrid(result.Schedule, class, slots))
	}

	title := req.Name
	if title == "" {
		title = "Timetable"
	}
	exports := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), logr)
	targets := map[models.ExportFormat]string{models.ExportFormatCSV: *csvPath, models.ExportFormatPDF: *pdfPath}
	for format, path := range targets {
		if path == "" {
			continue
		}
		rendered, err := exports.RenderSchedule(title, result.Schedule, slots, format, models.ExportView(*view))
		if err != nil {
			logr.Fatal("failed to render export", zap.String("format", string(format)), zap.Error(err))
		}
		if err := os.WriteFile(path, rendered.Payload, 0o644); err != nil {
			logr.Fatal("failed to write export", zap.String("path", path), zap.Error(err))
		}
		logr.Info("export written", zap.String("format", string(format)), zap.String("path", path))
	}
}

func readRequest(path string) (dto.GenerateTimetableRequest, error) {
	var req dto.GenerateTimetableRequest
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}

func printGrid(w io.Writer, grid timetable.Grid) {
	fmt.Fprintf(w, "\n%s\n", grid.Title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"Period", "Time"}
	for _, day := range grid.Days {
		header = append(header, day.Title())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range grid.Rows {
		cells := append([]string{fmt.Sprint(row.Period), row.Time}, row.Cells...)
		for i, cell := range cells {
			if cell == "" {
				cells[i] = "-"
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}
