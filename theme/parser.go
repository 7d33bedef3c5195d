package theme

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// findBlockEnd finds the end of a CSS block (the matching closing brace)
func findBlockEnd(content string, startPos int) int {
	if startPos >= len(content) {
		return len(content)
	}

	openBrace := strings.Index(content[startPos:], "{")
	if openBrace == -1 {
		return len(content)
	}
	openBrace += startPos

	depth := 1
	pos := openBrace + 1
	for pos < len(content) && depth > 0 {
		switch content[pos] {
		case '{':
			depth++
		case '}':
			depth--
		}
		pos++
	}

	return pos
}

// ParseThemeMetadata parses metadata from a CSS comment block.
func ParseThemeMetadata(cssContent string) ThemeMetadata {
	var meta ThemeMetadata

	startIdx := strings.Index(cssContent, "/*")
	if startIdx == -1 {
		return meta
	}

	endIdx := strings.Index(cssContent[startIdx:], "*/")
	if endIdx == -1 {
		return meta
	}

	metadataBlock := cssContent[startIdx+2 : startIdx+endIdx]
	for _, line := range strings.Split(metadataBlock, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Theme":
			meta.ID = value
		case "Name":
			meta.Name = value
		case "Description":
			meta.Description = value
		case "Frame":
			meta.Frame = value
		case "Entrance":
			meta.Entrance = value
		case "Hover":
			meta.Hover = value
		case "Transition":
			meta.Transition = value
		case "Effects":
			for _, e := range strings.Split(value, ",") {
				if e = strings.TrimSpace(e); e != "" {
					meta.Effects = append(meta.Effects, e)
				}
			}
		}
	}

	return meta
}

// parseDeclarations returns the custom properties declared inside the first
// {...} block of block. Semicolons inside parentheses do not end a declaration.
func parseDeclarations(block string) map[string]string {
	props := make(map[string]string)

	open := strings.Index(block, "{")
	closeIdx := strings.LastIndex(block, "}")
	if open == -1 || closeIdx <= open {
		return props
	}
	body := block[open+1 : closeIdx]

	var decls []string
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				decls = append(decls, body[start:i])
				start = i + 1
			}
		}
	}
	decls = append(decls, body[start:])

	for _, decl := range decls {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if !strings.HasPrefix(name, "--") {
			continue
		}
		props[name] = strings.TrimSpace(value)
	}

	return props
}

// ParseThemesFromCSS parses every theme declared in a CSS theme file. Each
// theme is a metadata comment followed by either a `:root` block or a
// `[data-theme="<id>"]` block holding its custom properties.
func ParseThemesFromCSS(cssContent string) []Theme {
	var themes []Theme
	content := cssContent
	pos := 0

	for pos < len(content) {
		metaStart := strings.Index(content[pos:], "/*")
		if metaStart == -1 {
			break
		}
		metaStart += pos

		metaEnd := strings.Index(content[metaStart:], "*/")
		if metaEnd == -1 {
			break
		}
		metaEnd += metaStart

		meta := ParseThemeMetadata(content[metaStart : metaEnd+2])
		if meta.ID == "" || meta.Name == "" {
			pos = metaEnd + 2
			continue
		}

		rest := content[metaEnd+2:]
		blockStart := strings.Index(rest, `[data-theme="`+meta.ID+`"]`)
		if rootStart := strings.Index(rest, ":root"); blockStart == -1 || (rootStart != -1 && rootStart < blockStart) {
			blockStart = rootStart
		}
		if blockStart == -1 {
			pos = metaEnd + 2
			continue
		}
		blockStart += metaEnd + 2
		blockEnd := findBlockEnd(content, blockStart)

		alreadyExists := false
		for _, existing := range themes {
			if existing.ID == meta.ID {
				alreadyExists = true
				break
			}
		}

		if !alreadyExists {
			t := Theme{
				ID:            meta.ID,
				Name:          meta.Name,
				Description:   meta.Description,
				CSSProperties: parseDeclarations(content[blockStart:blockEnd]),
				Animations: Animations{
					Entrance:   meta.Entrance,
					Hover:      meta.Hover,
					Transition: meta.Transition,
				},
				Effects: make(map[string]bool, len(meta.Effects)),
				Assets:  Assets{FrameImage: meta.Frame},
			}
			for _, e := range meta.Effects {
				t.Effects[e] = true
			}
			themes = append(themes, t)
		}

		pos = blockEnd
	}

	return themes
}

// LoadDir reads every *.css file in dir and returns the themes they declare,
// sorted by file name. Unreadable files and files without themes are logged
// and skipped.
func LoadDir(fsys fs.FS, dir string, logger *log.Logger) ([]Theme, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read theme directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var themes []Theme
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".css") {
			continue
		}

		cssContent, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn("failed to read theme file", "file", entry.Name(), "err", err)
			continue
		}

		parsed := ParseThemesFromCSS(string(cssContent))
		if len(parsed) == 0 {
			logger.Warn("no themes found in file", "file", entry.Name())
			continue
		}
		themes = append(themes, parsed...)
	}

	return themes, nil
}
