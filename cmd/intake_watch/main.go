package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/normalize"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/store"
)

// intake_watch ingests a drop directory of scanned documents into one
// account's general income documents. The preparer points it at a scanner
// output folder; new files are normalized and appended as they settle.

var verbose bool

// MIME mapping to avoid opening files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

func main() {
	dirFlag := flag.String("dir", "intake", "directory to scan for client documents")
	emailFlag := flag.String("email", "", "account email the documents belong to")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	if *emailFlag == "" {
		log.Fatal("-email is required")
	}
	email := strings.ToLower(strings.TrimSpace(*emailFlag))

	db := mustInitDBFromEnv()
	accounts := store.NewDBStore(db)
	if _, found, err := accounts.Load(email); err != nil {
		log.Fatalf("account lookup failed: %v", err)
	} else if !found {
		log.Fatalf("no account record for %s", email)
	}

	norm := normalize.New(normalize.NewPDFRasterizer())

	files := listSupportedFiles(*dirFlag)
	log.Printf("Scanning %d files in %s", len(files), *dirFlag)
	for _, name := range files {
		ingestFile(accounts, norm, email, *dirFlag, name)
	}

	if *watch {
		if err := watchDirectory(accounts, norm, email, *dirFlag); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func listSupportedFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := extMime[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ingestFile normalizes one file and appends the result to the account's
// income documents. A file already recorded under the same name is skipped
// so re-running the scan is idempotent.
func ingestFile(accounts store.Store, norm *normalize.Normalizer, email, dir, name string) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("WARN read %s: %v", path, err)
		return
	}
	ct := mimeFromExt(name)
	if ct == "" {
		ct = sniffContentType(data)
	}
	files, err := norm.Normalize(name, ct, data)
	if err != nil {
		log.Printf("WARN normalize %s: %v", name, err)
		return
	}

	rec, found, err := accounts.Load(email)
	if err != nil || !found {
		log.Printf("ERROR reload account %s: %v", email, err)
		return
	}
	for _, existing := range rec.Uploads.IncomeDocs {
		if existing.Name == files[0].Name {
			logV("SKIP already ingested %s", name)
			return
		}
	}
	rec.Uploads.IncomeDocs = append(rec.Uploads.IncomeDocs, files...)
	rec.LastSaved = time.Now().UTC()
	if err := accounts.Save(email, rec); err != nil {
		log.Printf("ERROR save account %s: %v", email, err)
		return
	}
	log.Printf("INGESTED %s (%d record(s)) for %s", name, len(files), email)
}

func watchDirectory(accounts store.Store, norm *normalize.Normalizer, email, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	// simple debounce map of pending files
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				name := filepath.Base(ev.Name)
				if !isSupportedExt(name) {
					continue
				}
				pending[name] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					delete(pending, name)
					ingestFile(accounts, norm, email, dir, name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func mimeFromExt(name string) string {
	if m, ok := extMime[strings.ToLower(filepath.Ext(name))]; ok {
		return m
	}
	return ""
}

// sniffContentType inspects the first 512 bytes.
func sniffContentType(data []byte) string {
	n := len(data)
	if n > 512 {
		n = 512
	}
	if n == 0 {
		return ""
	}
	return http.DetectContentType(data[:n])
}
