// SPDX-License-Identifier: AGPL-3.0-or-later
package modules

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ohos-build/hb/internal/hberr"
)

// Menu asks the user to pick one option.
type Menu interface {
	Select(ctx context.Context, title string, options []string) (string, error)
}

// Product is a buildable product and its config directory.
type Product struct {
	Name      string
	ConfigDir string
}

// ProductLister enumerates the products a user can choose from.
type ProductLister interface {
	Products(ctx context.Context) ([]Product, error)
}

// StaticProducts lists products from the products map of hb.yaml.
type StaticProducts map[string]string

func (s StaticProducts) Products(context.Context) ([]Product, error) {
	out := make([]Product, 0, len(s))
	for name, dir := range s {
		out = append(out, Product{Name: name, ConfigDir: dir})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TextMenu prints numbered options to Out and reads the answer from In.
// An answer may be the option number or its exact text.
type TextMenu struct {
	In  io.Reader
	Out io.Writer
}

func (t *TextMenu) Select(ctx context.Context, title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", hberr.Config(hberr.CodeSchemaIO, "%s: nothing to choose from", title)
	}
	fmt.Fprintln(t.Out, title)
	for i, opt := range options {
		fmt.Fprintf(t.Out, "  %d. %s\n", i+1, opt)
	}
	scanner := bufio.NewScanner(t.In)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(t.Out, "choice: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		answer := strings.TrimSpace(scanner.Text())
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, opt := range options {
			if opt == answer {
				return opt, nil
			}
		}
		fmt.Fprintf(t.Out, "invalid choice %q\n", answer)
	}
}
