package worker

import (
	"context"
	"os"

	"github.com/picamanga/pica/pkg/jobs"
	"github.com/picamanga/pica/pkg/libraries"
	"github.com/picamanga/pica/pkg/manga"
	"github.com/picamanga/pica/pkg/models"
	"github.com/picamanga/pica/pkg/scanner"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ProcessScanJob walks one library (or every active library when the job has
// no library_id) and reconciles each title it finds. Titles that vanished
// from disk are purged once the walk over their library finishes.
func (w *Worker) ProcessScanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	log.Info("processing scan job")

	opts := libraries.ListLibrariesOptions{ActiveOnly: true}
	var libs []*models.Library
	if job.LibraryID != nil {
		library, err := w.libraryService.RetrieveLibrary(ctx, libraries.RetrieveLibraryOptions{ID: job.LibraryID})
		if err != nil {
			return errors.WithStack(err)
		}
		libs = []*models.Library{library}
	} else {
		var err error
		libs, err = w.libraryService.ListLibraries(ctx, opts)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	log.Info("processing libraries", logger.Data{"count": len(libs)})

	for _, library := range libs {
		log := log.Data(logger.Data{"library_id": library.ID, "library_path": library.Filepath})
		log.Info("processing library")

		scanned, failed, err := scanner.ScanLibrary(ctx, library.Filepath)
		if err != nil {
			return errors.WithStack(err)
		}

		seenPaths := make([]string, 0, len(scanned))
		for i, sm := range scanned {
			if w.isShuttingDown() {
				return errShutdown
			}

			_, err := w.mangaService.ReconcileManga(ctx, &library.ID, sm)
			if err != nil {
				log.Err(err).Warn("reconcile failed", logger.Data{"path": sm.Filepath})
				failed++
				continue
			}
			seenPaths = append(seenPaths, sm.Filepath)

			w.updateProgress(ctx, job, (i+1)*100/len(scanned))
		}

		if failed == 0 {
			purged, err := w.mangaService.PurgeMissing(ctx, library.ID, seenPaths)
			if err != nil {
				return errors.WithStack(err)
			}
			if purged > 0 {
				log.Info("purged missing titles", logger.Data{"count": purged})
			}
		}

		log.Info("finished library", logger.Data{"scanned": len(scanned), "failed": failed})
	}

	log.Info("finished scan job")
	return nil
}

// ProcessRescanJob re-scans the directory of every persisted manga. A title
// whose directory is gone gets its rows deleted; each title reconciles in its
// own transaction so a shutdown between titles never leaves partial state.
func (w *Worker) ProcessRescanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	log.Info("processing rescan job")

	all, err := w.mangaService.ListManga(ctx, manga.ListMangaOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	rescanned := 0
	removed := 0
	failed := 0
	for i, m := range all {
		if w.isShuttingDown() {
			return errShutdown
		}

		if _, err := os.Stat(m.Filepath); os.IsNotExist(err) {
			log.Info("removing title gone from disk", logger.Data{"path": m.Filepath})
			if err := w.mangaService.DeleteManga(ctx, m); err != nil {
				return errors.WithStack(err)
			}
			removed++
			continue
		}

		scanned, err := scanner.ScanManga(m.Filepath)
		if err != nil {
			log.Err(err).Warn("rescan failed", logger.Data{"path": m.Filepath})
			failed++
			continue
		}
		_, err = w.mangaService.ReconcileManga(ctx, m.LibraryID, scanned)
		if err != nil {
			log.Err(err).Warn("reconcile failed", logger.Data{"path": m.Filepath})
			failed++
			continue
		}
		rescanned++

		w.updateProgress(ctx, job, (i+1)*100/len(all))
	}

	log.Info("finished rescan job", logger.Data{"rescanned": rescanned, "removed": removed, "failed": failed})
	return nil
}

func (w *Worker) updateProgress(ctx context.Context, job *models.Job, progress int) {
	if progress == job.Progress {
		return
	}
	job.Progress = progress
	err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"progress"}})
	if err != nil {
		logger.FromContext(ctx).Err(err).Warn("update progress error")
	}
}
