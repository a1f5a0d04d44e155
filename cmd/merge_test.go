package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kalimati/internal/pipeline"
)

func Test_parseSourceFlag(t *testing.T) {
	cases := map[string]pipeline.SourceSpec{
		"data/b.csv":                     {Path: "data/b.csv"},
		"data/a.csv?header&drop=SN":      {Path: "data/a.csv", HasHeader: true, DropColumns: []string{"SN"}},
		"data/a.csv?drop=SN,ID":          {Path: "data/a.csv", DropColumns: []string{"SN", "ID"}},
		"data/c.csv?replace-header":      {Path: "data/c.csv", ReplaceHeader: true},
		"/tmp/with space.csv?header=yes": {Path: "/tmp/with space.csv", HasHeader: true},
	}

	for value, expected := range cases {
		spec, err := parseSourceFlag(value)
		require.NoError(t, err, value)
		require.Equal(t, expected, spec, value)
	}

	for _, value := range []string{"", "?header", "data/a.csv?sheet=1"} {
		_, err := parseSourceFlag(value)
		require.Error(t, err, value)
	}
}
