package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/hydrocli/pkg/hydro/commands/load"
)

func TestRunCopyCategoriesContinuesPastFailures(t *testing.T) {
	var ran []string
	categories := []copyCategory{
		{"locations", func() (load.Result, error) {
			ran = append(ran, "locations")
			return load.Result{Fetched: 3, Stored: 1, Errors: 2}, errors.New("2 stores failed")
		}},
		{"location groups", func() (load.Result, error) {
			ran = append(ran, "location groups")
			return load.Result{}, errors.New("catalog fetch failed")
		}},
		{"timeseries identifiers", func() (load.Result, error) {
			ran = append(ran, "timeseries identifiers")
			return load.Result{Fetched: 1, Stored: 1}, nil
		}},
	}

	failed := runCopyCategories(categories)

	// Every category runs even when an earlier one fails outright.
	assert.Equal(t, []string{"locations", "location groups", "timeseries identifiers"}, ran)
	// Two per-object failures plus one category-level failure.
	assert.Equal(t, 3, failed)
}

func TestRunCopyCategoriesCleanRun(t *testing.T) {
	categories := []copyCategory{
		{"locations", func() (load.Result, error) {
			return load.Result{Fetched: 2, Stored: 2}, nil
		}},
	}
	assert.Equal(t, 0, runCopyCategories(categories))
}
