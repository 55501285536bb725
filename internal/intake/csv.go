// Package intake parses the two external instance formats (the CSV
// triple and the FJS single-file format) into an *fjsp.Instance, and
// offers an fjs-to-csv conversion utility. These are external
// collaborators: nothing in package fjsp depends on intake, only the
// reverse.
package intake

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/r3b0rn/fjsp-tabu/internal/ferrors"
	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
)

type csvTask struct {
	job, task, sequence int
	usable              []int
	pieces              int
}

// LoadCSV parses the three-file CSV intake: jobTasks.csv,
// machineRunSpeed.csv, and sequenceDependencyMatrix.csv.
func LoadCSV(jobTasksPath, machineSpeedsPath, seqDepMatrixPath string) (*fjsp.Instance, error) {
	tasks, jobs, err := readJobTasks(jobTasksPath)
	if err != nil {
		return nil, err
	}
	speeds, err := readMachineSpeeds(machineSpeedsPath)
	if err != nil {
		return nil, err
	}
	rows, err := readSequenceDependencyMatrix(seqDepMatrixPath)
	if err != nil {
		return nil, err
	}

	b := fjsp.NewBuilder(jobs, len(speeds))
	for m, sp := range speeds {
		b.SetMachineSpeed(m, sp)
	}

	for _, t := range tasks {
		proc := make(map[int]float64, len(t.usable))
		for _, m := range t.usable {
			if m < 0 || m >= len(speeds) {
				return nil, ferrors.NewInputMalformed(jobTasksPath, fmt.Errorf("task (job %d, task %d) references unknown machine %d", t.job, t.task, m))
			}
			if speeds[m] == 0 {
				return nil, ferrors.NewInputMalformed(machineSpeedsPath, fmt.Errorf("machine %d has zero run speed", m))
			}
			proc[m] = float64(t.pieces) / speeds[m]
		}
		b.AddTask(t.job, t.usable, proc)
	}
	if len(rows) > 0 {
		b.SetSequenceDependencyMatrix(rows)
	}

	inst, err := b.Build()
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// readJobTasks parses jobTasks.csv: header `Job,Task,Sequence,Usable_Machines,Pieces`,
// rows assumed grouped by ascending Job then Sequence rather than sorted.
func readJobTasks(path string) ([]csvTask, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, ferrors.NewInputMalformed(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header
		return nil, 0, ferrors.NewInputMalformed(path, err)
	}

	var tasks []csvTask
	maxJob := -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, ferrors.NewInputMalformed(path, err)
		}
		if len(rec) != 5 {
			return nil, 0, ferrors.NewInputMalformed(path, fmt.Errorf("row %v: want 5 columns, got %d", rec, len(rec)))
		}

		job, err1 := strconv.Atoi(strings.TrimSpace(rec[0]))
		task, err2 := strconv.Atoi(strings.TrimSpace(rec[1]))
		seq, err3 := strconv.Atoi(strings.TrimSpace(rec[2]))
		pieces, err4 := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, 0, ferrors.NewInputMalformed(path, fmt.Errorf("row %v: non-integer field", rec))
		}

		usable, err := parseBracketedInts(rec[3])
		if err != nil {
			return nil, 0, ferrors.NewInputMalformed(path, fmt.Errorf("row %v: %w", rec, err))
		}

		tasks = append(tasks, csvTask{job: job, task: task, sequence: seq, usable: usable, pieces: pieces})
		if job > maxJob {
			maxJob = job
		}
	}
	return tasks, maxJob + 1, nil
}

// parseBracketedInts parses a string like "[0 2 5]" into []int{0,2,5}.
func parseBracketedInts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty usable-machines list")
	}
	fields := strings.Fields(s)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("non-integer machine id %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// readMachineSpeeds parses machineRunSpeed.csv: header `Machine,RunSpeed`,
// one row per machine in ascending id.
func readMachineSpeeds(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.NewInputMalformed(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil {
		return nil, ferrors.NewInputMalformed(path, err)
	}

	var speeds []float64
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ferrors.NewInputMalformed(path, err)
		}
		if len(rec) != 2 {
			return nil, ferrors.NewInputMalformed(path, fmt.Errorf("row %v: want 2 columns, got %d", rec, len(rec)))
		}
		sp, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, ferrors.NewInputMalformed(path, fmt.Errorf("row %v: non-numeric RunSpeed", rec))
		}
		speeds = append(speeds, sp)
	}
	return speeds, nil
}

// readSequenceDependencyMatrix parses sequenceDependencyMatrix.csv: a
// header row followed by T+1 rows of T integer columns after an index
// prefix. Row 0 is the idle-predecessor row.
func readSequenceDependencyMatrix(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.NewInputMalformed(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil {
		return nil, ferrors.NewInputMalformed(path, err)
	}

	var rows [][]float64
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ferrors.NewInputMalformed(path, err)
		}
		if len(rec) < 2 {
			return nil, ferrors.NewInputMalformed(path, fmt.Errorf("row %v: too few columns", rec))
		}
		row := make([]float64, 0, len(rec)-1)
		for _, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, ferrors.NewInputMalformed(path, fmt.Errorf("row %v: non-numeric setup value", rec))
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
