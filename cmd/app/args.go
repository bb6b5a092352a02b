package main

import (
	"strconv"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}
}

// argID reads positional argument i as a positive id.
func argID(c *cli.Command, i int, label string) (int64, error) {
	raw := strings.TrimSpace(c.Args().Get(i))
	if raw == "" {
		return 0, usagef("%s is required", label)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("%s must be a positive number", label)
	}
	return id, nil
}

func argCategory(c *cli.Command, i int) (domain.Category, error) {
	return parseCategory(c.Args().Get(i))
}

func parseCategory(raw string) (domain.Category, error) {
	cat := domain.Category(strings.ToUpper(strings.TrimSpace(raw)))
	if !cat.Valid() {
		names := make([]string, 0, len(domain.Categories))
		for _, known := range domain.Categories {
			names = append(names, string(known))
		}
		return "", usagef("category must be one of %s", strings.Join(names, ", "))
	}
	return cat, nil
}

func optionalID(c *cli.Command, name string) *int64 {
	if !c.IsSet(name) {
		return nil
	}
	id := c.Int64(name)
	return &id
}

func fieldIndex(fields []application.SpecField, key string) int {
	for i, f := range fields {
		if strings.TrimSpace(f.Key) == key {
			return i
		}
	}
	return -1
}

// applySpecFlags feeds --spec key=value and --unset-spec key through the
// editor and returns the resulting specJson.
func applySpecFlags(e *application.SpecEditor, sets, unsets []string) (string, error) {
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return "", usagef("--spec wants key=value, got %q", kv)
		}
		i := fieldIndex(e.Fields(), key)
		if i < 0 {
			e.Add()
			i = len(e.Fields()) - 1
		}
		if err := e.Update(i, key, value); err != nil {
			return "", err
		}
	}
	for _, key := range unsets {
		if i := fieldIndex(e.Fields(), strings.TrimSpace(key)); i >= 0 {
			if err := e.Remove(i); err != nil {
				return "", err
			}
		}
	}
	e.Flush()
	return e.Object().JSON(), nil
}
