package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/rotisserie/eris"

	"github.com/thehutch/fusion/ecs"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Entities int
	Workers  int
	Seed     uint64

	// Results
	TotalTime      time.Duration
	Ticks          ecs.SchedulerStats
	EntityStats    ecs.EntityStats
	Spawned        int
	Respawns       int
	Frozen         int
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Workers:** {{if .Workers}}{{.Workers}}{{else}}GOMAXPROCS{{end}}
- **Seed:** {{.Seed}}

## Performance Results
- **Total Ticks:** {{.Ticks.Ticks}}
- **Total Test Time:** {{.TotalTime}}
- **Tick Time:**
  - **Avg:** {{.Ticks.AvgDuration}}
  - **Min:** {{.Ticks.MinDuration}}
  - **Max:** {{.Ticks.MaxDuration}}

## Processors
| Processor | Entities | Runs | Avg | Min | Max |
|-----------|----------|------|-----|-----|-----|
{{- range .Ticks.Processors}}
| {{.Name}} | {{.Entities}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MinDuration}} | {{.MaxDuration}} |
{{- end}}

## Entities
- **Spawned:** {{.Spawned}} ({{.Respawns}} respawns)
- **Created:** {{.EntityStats.TotalCreated}}
- **Added:** {{.EntityStats.TotalAdded}}
- **Deleted:** {{.EntityStats.TotalDeleted}}
- **Active:** {{.EntityStats.Active}}
- **Frozen:** {{.Frozen}}
- **Free Ids:** {{.EntityStats.FreeIds}}

## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MB (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc | mb}} MB
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} MB (start) -> {{mb .MemStatsEnd.TotalAlloc}} MB (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc | mb}} MB
- Sys Memory:     {{mb .MemStatsStart.Sys}} MB (start) -> {{mb .MemStatsEnd.Sys}} MB (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys | mb}} MB
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{usub64 .MemStatsEnd.PauseTotalNs .MemStatsStart.PauseTotalNs | ns}}
- **Num GC Cycles:** {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{end}}`

var reportFuncs = template.FuncMap{
	"mb": func(v any) string {
		switch val := v.(type) {
		case uint64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		case int64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		default:
			return "N/A"
		}
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"usub64": func(a, b uint64) uint64 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

func (r *Report) Generate(w io.Writer) error {
	return eris.Wrap(reportTmpl.Execute(w, r), "failed to render report")
}
