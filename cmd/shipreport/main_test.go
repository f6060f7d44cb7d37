package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dashboard/internal/charts"
	"shipment-dashboard/internal/models"
)

const testCSV = `Shipping_Method,Import_Export,Category,Country,Payment_Terms,Quantity,Weight,Value,Date
Sea,Import,Toys,India,Prepaid,10,100,1000,15-01-2022
Air,Export,Machinery,China,Net 30,20,200,2000,3-02-2022
Sea,Export,Toys,India,Prepaid,4,40,400,9-02-2022
Land,Import,Electronics,Germany,Cash on Delivery,7,70,700,1-03-2022
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shipments.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestViewsCommand(t *testing.T) {
	out, err := execute(t, "views", "--file", writeDataset(t), "--sample-size", "0")
	require.NoError(t, err)

	var views models.Views
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Equal(t, 4, views.RowCount)
	assert.Len(t, views.TradeVolumeMap, 3)
}

func TestViewsCommand_Filters(t *testing.T) {
	path := writeDataset(t)

	out, err := execute(t, "views", "--file", path, "--sample-size", "0", "--shipping-method", "Sea", "--view", "top_countries")
	require.NoError(t, err)

	var top models.TopCountries
	require.NoError(t, json.Unmarshal([]byte(out), &top))
	assert.Equal(t, []models.CountryCount{{Country: "India", Count: 1}}, top.Import)
	assert.Equal(t, []models.CountryCount{{Country: "India", Count: 1}}, top.Export)

	out, err = execute(t, "views", "--file", path, "--sample-size", "0", "--category=")
	require.NoError(t, err)

	var views models.Views
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Zero(t, views.RowCount)
	assert.True(t, views.Empty())
}

func TestViewsCommand_RepeatedFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipments.csv")
	content := testCSV + "Air,Import,\"Toys, Games\",France,Prepaid,3,30,300,5-04-2022\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, err := execute(t, "views", "--file", path, "--sample-size", "0",
		"--category", "Toys, Games", "--category", "Machinery")
	require.NoError(t, err)

	var views models.Views
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Equal(t, 2, views.RowCount)
}

func TestViewsCommand_Errors(t *testing.T) {
	_, err := execute(t, "views", "--file", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = execute(t, "views", "--file", writeDataset(t), "--sample-size", "10")
	assert.Error(t, err)

	_, err = execute(t, "views", "--file", writeDataset(t), "--sample-size", "0", "--view", "pie")
	assert.ErrorIs(t, err, charts.ErrUnknownView)
}

func TestChartsCommand(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "png")

	out, err := execute(t, "charts", "--file", writeDataset(t), "--sample-size", "0", "--out", outDir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(charts.Catalog))

	for _, spec := range charts.Catalog {
		f, err := os.Open(filepath.Join(outDir, spec.ID+".png"))
		require.NoError(t, err)
		_, err = png.DecodeConfig(f)
		f.Close()
		assert.NoError(t, err, spec.ID)
	}
}
