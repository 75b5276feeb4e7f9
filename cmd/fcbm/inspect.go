package main

import (
	"fmt"
	"sort"
	"strconv"

	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// valueCount is one legend entry of a classified raster.
type valueCount struct {
	Value  uint16
	Pixels int64
}

const (
	legendAuto    = "auto"
	legendStates  = "states"
	legendClasses = "classes"
)

func (a *app) inspectCmd() *cobra.Command {
	var driverName, legend string

	cmd := &cobra.Command{
		Use:   "inspect <raster>",
		Short: "List the distinct values and pixel counts of a classified map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := a.openDriver(driverName, a.log)
			if err != nil {
				return err
			}
			r, err := driver.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			values := distinctValues(r)
			name, err := legendFor(legend, values)
			if err != nil {
				return err
			}

			meta := r.Metadata
			res := meta.Resolution()
			fmt.Fprintf(a.out, "%s\n%dx%d pixels, %d band(s), %s, resolution %s\n",
				args[0], meta.Width, meta.Height, meta.BandCount, meta.DataType, res)

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Value", "Meaning", "Pixels", "Area (ha)")
			for _, vc := range values {
				area := "-"
				if res.Valid() {
					area = fmt.Sprintf("%.2f", float64(vc.Pixels)*res.PixelAreaHectares())
				}
				t.Row(strconv.Itoa(int(vc.Value)), name(vc.Value), strconv.FormatInt(vc.Pixels, 10), area)
			}
			_, err = fmt.Fprintln(a.out, t.String())
			return err
		},
	}
	cmd.Flags().StringVar(&driverName, "driver", "gdal", "raster driver (gdal, opencv, memory)")
	cmd.Flags().StringVar(&legend, "legend", legendAuto, "value labels: states (input maps), classes (fcbm output) or auto")
	return cmd
}

func distinctValues(r *models.Raster) []valueCount {
	counts := make(map[uint16]int64)
	for _, v := range r.Pixels {
		counts[v]++
	}

	out := make([]valueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, valueCount{Value: v, Pixels: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// legendFor picks the value labels. In auto mode a raster holding values 3..8
// and nothing above is taken to be a transition class map.
func legendFor(legend string, values []valueCount) (func(uint16) string, error) {
	switch legend {
	case legendStates:
		return stateName, nil
	case legendClasses:
		return className, nil
	case legendAuto, "":
	default:
		return nil, fmt.Errorf("unknown legend: %s", legend)
	}

	if len(values) == 0 {
		return stateName, nil
	}
	highest := values[len(values)-1].Value
	if highest > models.StateNonForest && highest <= classes.TransitionCount {
		return className, nil
	}
	return stateName, nil
}

func className(v uint16) string {
	if v > classes.TransitionCount {
		return "unexpected"
	}
	return classes.Default().DescribeTransition(classes.Transition(v))
}

func stateName(v uint16) string {
	switch v {
	case models.StateNoData:
		return "nodata"
	case models.StateForest:
		return "forest"
	case models.StateNonForest:
		return "non-forest"
	default:
		return "unexpected"
	}
}
