// Package packaging assembles the final party kit: the game_<id>
// directory tree, the zip archive, and the manifest recorded on the
// state. Everything is staged under a hidden temp directory and renamed
// into place only when complete, so an aborted run never leaves a
// half-written kit where a host might pick it up.
package packaging

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/render"
)

// Packager writes the deliverable tree for one generated game.
type Packager struct {
	renderer *render.Renderer
	pdf      *render.PDFRenderer
	progress io.Writer
}

// New creates a Packager rendering documents in the given language.
func New(lang string) *Packager {
	return &Packager{renderer: render.New(lang)}
}

// SetProgress sets a writer for packaging progress output.
func (p *Packager) SetProgress(w io.Writer) {
	p.progress = w
}

// SetPDFRenderer enables PDF twins for every markdown document.
func (p *Packager) SetPDFRenderer(r *render.PDFRenderer) {
	p.pdf = r
}

func (p *Packager) logf(format string, args ...interface{}) {
	if p.progress != nil {
		fmt.Fprintf(p.progress, format+"\n", args...)
	}
}

// Package builds game_<id>/ under outputDir, zips it, and records the
// manifest on st.Packaging. imagesDir may be "" or missing when no
// portraits were generated.
func (p *Packager) Package(ctx context.Context, st *game.State, imagesDir, outputDir string) error {
	if _, err := st.RequireCharacters(); err != nil {
		return fmt.Errorf("packaging: %w", err)
	}
	if _, err := st.RequireKiller(); err != nil {
		return fmt.Errorf("packaging: %w", err)
	}
	if st.HostGuide == nil {
		return fmt.Errorf("packaging: host guide not yet generated")
	}
	if len(st.Clues) == 0 {
		return fmt.Errorf("packaging: clues not yet generated")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("packaging: mkdir output dir: %w", err)
	}

	// Stage inside the output dir so the final rename stays on one
	// filesystem.
	staging, err := os.MkdirTemp(outputDir, ".staging-*")
	if err != nil {
		return fmt.Errorf("packaging: create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	info := &game.PackagingInfo{}
	var mdPaths []string

	hostFiles, paths, err := p.writeHostDocs(staging, st)
	if err != nil {
		return fmt.Errorf("packaging: %w", err)
	}
	info.HostFiles = hostFiles
	mdPaths = append(mdPaths, paths...)

	playerFiles, paths, err := p.writeCharacterSheets(staging, st)
	if err != nil {
		return fmt.Errorf("packaging: %w", err)
	}
	info.PlayerPackages = playerFiles
	mdPaths = append(mdPaths, paths...)

	clueFiles, paths, err := p.writeClueCards(staging, st)
	if err != nil {
		return fmt.Errorf("packaging: %w", err)
	}
	info.ClueFiles = clueFiles
	mdPaths = append(mdPaths, paths...)

	imageCount, err := copyImages(imagesDir, filepath.Join(staging, "images"))
	if err != nil {
		return fmt.Errorf("packaging: %w", err)
	}

	if p.pdf != nil && p.pdf.Available() {
		pdfs := p.pdf.RenderAll(ctx, mdPaths, p.progress)
		made := 0
		for _, path := range pdfs {
			if path != "" {
				made++
			}
		}
		p.logf("rendered %d/%d documents to pdf", made, len(mdPaths))
	}

	gameDir := filepath.Join(outputDir, "game_"+st.Meta.ShortID())
	if _, err := os.Stat(gameDir); err == nil {
		return fmt.Errorf("packaging: %s already exists", gameDir)
	}
	if err := os.Rename(staging, gameDir); err != nil {
		return fmt.Errorf("packaging: move into place: %w", err)
	}

	archivePath := filepath.Join(outputDir, "mystery_game_"+st.Meta.ShortID()+".zip")
	if err := zipDir(gameDir, archivePath); err != nil {
		return fmt.Errorf("packaging: %w", err)
	}

	info.GameDir = gameDir
	info.ArchivePath = archivePath
	info.IndexSummary = fmt.Sprintf("%d player packages, %d clues, %d images",
		len(info.PlayerPackages), len(info.ClueFiles), imageCount)
	st.Packaging = info

	p.logf("kit written to %s", gameDir)
	return nil
}

func writeDoc(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (p *Packager) writeHostDocs(staging string, st *game.State) ([]game.FileDescriptor, []string, error) {
	gameDir := filepath.Join(staging, "game")
	docs := []struct {
		id, name, content string
		markdown          bool
	}{
		{"host_guide", "host_guide.md", p.renderer.HostGuide(st), true},
		{"solution", "solution.md", p.renderer.Solution(st), true},
		{"invitation", "invitation.txt", p.renderer.Invitation(st), false},
	}

	var files []game.FileDescriptor
	var mdPaths []string
	for _, doc := range docs {
		path := filepath.Join(gameDir, doc.name)
		if err := writeDoc(path, doc.content); err != nil {
			return nil, nil, err
		}
		fileType := "txt"
		if doc.markdown {
			fileType = "markdown"
			mdPaths = append(mdPaths, path)
		}
		files = append(files, game.FileDescriptor{
			ID:   doc.id,
			Type: fileType,
			Name: doc.name,
			Path: filepath.Join("game", doc.name),
		})
	}
	return files, mdPaths, nil
}

func (p *Packager) writeCharacterSheets(staging string, st *game.State) ([]game.FileDescriptor, []string, error) {
	var files []game.FileDescriptor
	var mdPaths []string
	for i := range st.Characters {
		c := &st.Characters[i]
		rel := filepath.Join("characters", fmt.Sprintf("player_%d", i+1), "character_sheet.md")
		path := filepath.Join(staging, rel)
		if err := writeDoc(path, p.renderer.CharacterSheet(st, c)); err != nil {
			return nil, nil, err
		}
		files = append(files, game.FileDescriptor{
			ID:   c.ID,
			Type: "markdown",
			Name: c.Name,
			Path: rel,
		})
		mdPaths = append(mdPaths, path)
	}
	return files, mdPaths, nil
}

func (p *Packager) writeClueCards(staging string, st *game.State) ([]game.FileDescriptor, []string, error) {
	var files []game.FileDescriptor
	var mdPaths []string
	for i := range st.Clues {
		clue := &st.Clues[i]
		rel := filepath.Join("clues", fmt.Sprintf("clue_%d.md", i+1))
		path := filepath.Join(staging, rel)
		if err := writeDoc(path, p.renderer.ClueCard(st, clue, i+1)); err != nil {
			return nil, nil, err
		}
		files = append(files, game.FileDescriptor{
			ID:   clue.ID,
			Type: "markdown",
			Name: clue.Title,
			Path: rel,
		})
		mdPaths = append(mdPaths, path)
	}
	return files, mdPaths, nil
}

// copyImages copies every regular file from src into dst. A missing or
// empty src is not an error; portraits are optional.
func copyImages(src, dst string) (int, error) {
	if src == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read images dir: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir images: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, entry.Name()))
		if err != nil {
			return count, fmt.Errorf("read image %s: %w", entry.Name(), err)
		}
		if err := os.WriteFile(filepath.Join(dst, entry.Name()), data, 0o644); err != nil {
			return count, fmt.Errorf("copy image %s: %w", entry.Name(), err)
		}
		count++
	}
	return count, nil
}

// zipDir writes dir's contents into a zip archive at archivePath, with
// paths relative to dir's parent so the archive unpacks to one folder.
func zipDir(dir, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	base := filepath.Base(dir)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(base, rel))
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("zip %s: %w", dir, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}
