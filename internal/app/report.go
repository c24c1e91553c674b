package app

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Run report files live next to the store so the last run's result is
// inspectable without trawling logs.
const (
	successReportFile = ".lastrun.success.json"
	failedReportFile  = ".lastrun.failed.json"
)

type failedEntry struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Reason   string `json:"reason"`
}

func writeRunReport(dir string, report *RunReport) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var updated []string
	var failed []failedEntry
	for _, o := range report.Outcomes {
		if o.Updated {
			updated = append(updated, o.Exchange+":"+o.Symbol)
		} else {
			failed = append(failed, failedEntry{Exchange: o.Exchange, Symbol: o.Symbol, Reason: o.Reason})
		}
	}
	for _, f := range report.Failures {
		failed = append(failed, failedEntry{Exchange: f.Exchange, Symbol: f.Symbol, Reason: f.Reason})
	}

	if len(updated) > 0 {
		if err := writeJSON(filepath.Join(dir, successReportFile), updated); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		if err := writeJSON(filepath.Join(dir, failedReportFile), failed); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
