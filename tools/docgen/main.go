// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docgen turns docs/commands/<cmd>.md into a man page and a tldr page per
// command. It is run by hand before a release.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

const (
	progName = "marquee"
	repoURL  = "https://github.com/staranto/marquee"
)

var (
	headingRe     = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	placeholderRe = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9 _-]*)>`)
)

// page is what the tldr output needs from one command document.
type page struct {
	cmd      string
	title    string
	summary  string
	examples []example
}

type example struct {
	Desc string
	Cmd  string
}

func main() {
	root := flag.String("root", ".", "repo root")
	force := flag.Bool("force", false, "rewrite outputs even when unchanged")
	flag.Parse()

	n, err := generate(*root, !*force)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("generated docs for %d commands\n", n)
}

// generate renders every command document below root and reports how many
// it handled.
func generate(root string, onlyIfChanged bool) (int, error) {
	src := filepath.Join(root, "docs", "commands")
	manDir := filepath.Join(root, "docs", "man", "share", "man1")
	tldrDir := filepath.Join(root, "docs", "tldr")

	for _, d := range []string{manDir, tldrDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return 0, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	docs, err := filepath.Glob(filepath.Join(src, "*.md"))
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("no command markdown found under %s", src)
	}

	for _, doc := range docs {
		raw, err := os.ReadFile(doc)
		if err != nil {
			return 0, err
		}
		cmd := strings.TrimSuffix(filepath.Base(doc), ".md")
		base := progName + "-" + cmd

		if err := writeIfChanged(filepath.Join(manDir, base+".1"), md2man.Render(raw), onlyIfChanged); err != nil {
			return 0, fmt.Errorf("%s man page: %w", cmd, err)
		}
		tldr := parsePage(cmd, string(raw)).tldr()
		if err := writeIfChanged(filepath.Join(tldrDir, base+".md"), []byte(tldr), onlyIfChanged); err != nil {
			return 0, fmt.Errorf("%s tldr page: %w", cmd, err)
		}
	}
	return len(docs), nil
}

// writeIfChanged skips the write when path already holds data, ignoring
// surrounding whitespace.
func writeIfChanged(path string, data []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(data)):
			return nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// section returns the lines following the first line that reads heading,
// case-insensitively, or nil when there is no such line.
func section(md, heading string) []string {
	lines := strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n")
	for i, ln := range lines {
		if strings.EqualFold(strings.TrimSpace(ln), heading) {
			return lines[i+1:]
		}
	}
	return nil
}

func parsePage(cmd, md string) page {
	p := page{cmd: cmd}
	if m := headingRe.FindStringSubmatch(md); m != nil {
		p.title = strings.TrimSpace(m[1])
	}

	// The summary is the first paragraph under "Short description".
	var words []string
	for _, ln := range section(md, "Short description") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			if len(words) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(ln, "#") || strings.HasSuffix(ln, ":") {
			break
		}
		words = append(words, ln)
	}
	p.summary = strings.Join(words, " ")
	if p.summary == "" && p.title != "" {
		p.summary = p.title + "."
	}

	p.examples = parseExamples(section(md, "Quick examples"))
	return p
}

// parseExamples reads the first fenced block in lines. A "# text" line
// describes the command line that follows it.
func parseExamples(lines []string) []example {
	var (
		exs     []example
		desc    string
		inFence bool
	)
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if strings.HasPrefix(ln, "```") {
			if inFence {
				break
			}
			inFence = true
			continue
		}
		if !inFence || ln == "" {
			continue
		}
		if strings.HasPrefix(ln, "#") {
			desc = strings.TrimSpace(strings.TrimLeft(ln, "#"))
			continue
		}
		if desc == "" {
			desc = "Example"
		}
		exs = append(exs, example{Desc: desc, Cmd: ln})
		desc = ""
	}
	return exs
}

func (p page) tldr() string {
	var b strings.Builder

	lead := p.summary
	if lead == "" {
		lead = progName + " " + p.cmd
	}
	fmt.Fprintf(&b, "# %s-%s\n\n> %s\n> More information: %s.\n", progName, p.cmd, lead, repoURL)

	exs := p.examples
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: progName + " " + p.cmd + " --help"}}
	}
	for _, ex := range exs {
		fmt.Fprintf(&b, "\n- %s:\n\n`%s`\n", ex.Desc, placeholders(ex.Cmd))
	}
	return b.String()
}

// placeholders squeezes whitespace and rewrites <arg> as the tldr {{arg}}.
func placeholders(s string) string {
	return placeholderRe.ReplaceAllString(strings.Join(strings.Fields(s), " "), "{{$1}}")
}
