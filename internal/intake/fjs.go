package intake

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/r3b0rn/fjsp-tabu/internal/ferrors"
	"github.com/r3b0rn/fjsp-tabu/internal/fjsp"
)

var whitespace = regexp.MustCompile(`\s+`)

// LoadFJS parses the single-file FJS format: a header line `J M 1`
// (trailing token ignored) followed by one line per job of
// `n_k (u p1 t1 p2 t2 ...) ...`, one-indexed machine ids, no setup
// matrix.
func LoadFJS(path string) (*fjsp.Instance, error) {
	lines, err := readNonBlankLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ferrors.NewInputMalformed(path, fmt.Errorf("empty file"))
	}

	header, err := parseInts(lines[0])
	if err != nil || len(header) < 2 {
		return nil, ferrors.NewInputMalformed(path, fmt.Errorf("malformed header line %q", lines[0]))
	}
	jobs, machines := header[0], header[1]

	b := fjsp.NewBuilder(jobs, machines)
	for m := 0; m < machines; m++ {
		b.SetMachineSpeed(m, 1)
	}

	if len(lines)-1 != jobs {
		return nil, ferrors.NewInputMalformed(path, fmt.Errorf("header declares %d jobs, found %d job lines", jobs, len(lines)-1))
	}

	for job, line := range lines[1:] {
		data, err := parseInts(line)
		if err != nil {
			return nil, ferrors.NewInputMalformed(path, fmt.Errorf("job %d: %w", job, err))
		}
		if len(data) == 0 {
			return nil, ferrors.NewInputMalformed(path, fmt.Errorf("job %d: empty task line", job))
		}

		i := 1
		for i < len(data) {
			if i >= len(data) {
				return nil, ferrors.NewInputMalformed(path, fmt.Errorf("job %d: truncated task block", job))
			}
			numUsable := data[i]
			i++
			usable := make([]int, 0, numUsable)
			proc := make(map[int]float64, numUsable)
			for k := 0; k < numUsable; k++ {
				if i+1 >= len(data) {
					return nil, ferrors.NewInputMalformed(path, fmt.Errorf("job %d: truncated machine/time pair", job))
				}
				machine := data[i] - 1 // one-indexed in FJS, zero-indexed in the core
				runtime := data[i+1]
				usable = append(usable, machine)
				proc[machine] = float64(runtime)
				i += 2
			}
			b.AddTask(job, usable, proc)
		}
	}

	return b.Build()
}

// FJSToCSV converts the FJS file at fjsPath into the three CSV files,
// writing them into outDir with RunSpeed=1 and an all-zero setup matrix.
func FJSToCSV(fjsPath, outDir string) error {
	lines, err := readNonBlankLines(fjsPath)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return ferrors.NewInputMalformed(fjsPath, fmt.Errorf("empty file"))
	}

	header, err := parseInts(lines[0])
	if err != nil || len(header) < 2 {
		return ferrors.NewInputMalformed(fjsPath, fmt.Errorf("malformed header line %q", lines[0]))
	}
	machines := header[1]

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	jobTasksPath := outDir + "/jobTasks.csv"
	jtf, err := os.Create(jobTasksPath)
	if err != nil {
		return err
	}
	defer jtf.Close()

	w := bufio.NewWriter(jtf)
	fmt.Fprintln(w, "Job,Task,Sequence,Usable_Machines,Pieces")

	totalTasks := 0
	for job, line := range lines[1:] {
		data, err := parseInts(line)
		if err != nil {
			return ferrors.NewInputMalformed(fjsPath, fmt.Errorf("job %d: %w", job, err))
		}
		numTasks := data[0]
		totalTasks += numTasks

		taskID, seq, i := 0, 0, 1
		for i < len(data) {
			numUsable := data[i]
			usableIDs := make([]string, 0, numUsable)
			var pieces int
			for k := 0; k < numUsable; k++ {
				j := i + 1 + 2*k
				usableIDs = append(usableIDs, strconv.Itoa(data[j]-1))
				pieces = data[j+1]
			}
			fmt.Fprintf(w, "%d,%d,%d,[%s],%d\n", job, taskID, seq, strings.Join(usableIDs, " "), pieces)
			i += numUsable*2 + 1
			taskID++
			seq++
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	speedsPath := outDir + "/machineRunSpeed.csv"
	sf, err := os.Create(speedsPath)
	if err != nil {
		return err
	}
	defer sf.Close()
	sw := bufio.NewWriter(sf)
	fmt.Fprintln(sw, "Machine,RunSpeed")
	for m := 0; m < machines; m++ {
		fmt.Fprintf(sw, "%d,1\n", m)
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	matrixPath := outDir + "/sequenceDependencyMatrix.csv"
	mf, err := os.Create(matrixPath)
	if err != nil {
		return err
	}
	defer mf.Close()
	mw := bufio.NewWriter(mf)
	fmt.Fprintln(mw, "Index,"+strings.TrimSuffix(strings.Repeat("0,", totalTasks), ","))
	zeroRow := strings.TrimSuffix(strings.Repeat("0,", totalTasks), ",")
	for r := 0; r <= totalTasks; r++ {
		fmt.Fprintf(mw, "%d,%s\n", r, zeroRow)
	}
	return mw.Flush()
}

func readNonBlankLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.NewInputMalformed(path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, ferrors.NewInputMalformed(path, err)
	}
	return lines, nil
}

func parseInts(line string) ([]int, error) {
	fields := strings.Fields(whitespace.ReplaceAllString(strings.TrimSpace(line), " "))
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("non-integer field %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
