package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/ghgmap/pkg/config"
)

func TestInspectTable(t *testing.T) {
	got := inspectTable(testTree(t), config.Default())

	for _, want := range []string{
		"Category", "Zoom", "Highlight",
		"Transport", "Buses", "Railways", "Agriculture",
		"Wastewater treatment and discharge",
		"0.74", "0.01", "59",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q", want)
		}
	}

	rowOf := func(name string) string {
		for _, line := range strings.Split(got, "\n") {
			if strings.Contains(line, " "+name+" ") {
				return line
			}
		}
		t.Fatalf("no row for %q", name)
		return ""
	}

	tests := []struct {
		name  string
		marks int
		want  []string
	}{
		{"Transport", 0, []string{"40"}},
		{"Buses", 1, []string{"30", "Transport"}},
		{"Other", 1, []string{"0.01", "Waste"}},
		{"Agriculture", 0, []string{"59"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := rowOf(tt.name)
			if n := strings.Count(row, iconSuccess); n != tt.marks {
				t.Errorf("row %q has %d marks, want %d", row, n, tt.marks)
			}
			for _, w := range tt.want {
				if !strings.Contains(row, w) {
					t.Errorf("row %q missing %q", row, w)
				}
			}
		})
	}
}

func TestInspectIndentsByDepth(t *testing.T) {
	got := inspectTable(testTree(t), config.Default())
	if !strings.Contains(got, "  Buses") {
		t.Error("children should be indented under their parent")
	}
	if strings.Contains(got, "│   Transport") {
		t.Error("top-level categories should not be indented")
	}
}

func TestMark(t *testing.T) {
	if mark(true) != iconSuccess || mark(false) != "" {
		t.Error("mark should only render true values")
	}
}
