package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/forPelevin/recap/internal/logging"
	"github.com/forPelevin/recap/internal/types"
)

// resolveSource returns the local source video of e, downloading it first
// when it is missing and the entry carries a link. A path that still does
// not exist is returned as is; ProcessClip reports it.
func (u Usecase) resolveSource(ctx context.Context, e types.Entry) (string, error) {
	path := u.s.Layout.SourcePath(e)
	if exists(path) || e.VideoLink == "" || u.d.Downloader == nil {
		return path, nil
	}
	_, err, _ := u.fetch.Do("source:"+path, func() (any, error) {
		if exists(path) {
			return nil, nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create videos dir: %w", err)
		}
		tmp := tempPath(path)
		u.log.Info("downloading source",
			slog.String(logging.FieldEntry, e.Label()),
			slog.String("url", e.VideoLink),
		)
		if err := u.d.Downloader.Download(ctx, e.VideoLink, tmp); err != nil {
			_ = os.Remove(tmp)
			return nil, fmt.Errorf("download %s: %w", e.Label(), err)
		}
		return nil, commit(tmp, path)
	})
	return path, err
}

// resolveCard returns the PNG card of e, rasterizing a same-named SVG when
// only that exists.
func (u Usecase) resolveCard(ctx context.Context, e types.Entry) (string, error) {
	path := u.s.Layout.CardPath(e)
	svg := u.s.Layout.CardSVGPath(e)
	if exists(path) || u.d.Rasterizer == nil || !exists(svg) {
		return path, nil
	}
	_, err, _ := u.fetch.Do("card:"+path, func() (any, error) {
		if exists(path) {
			return nil, nil
		}
		tmp := tempPath(path)
		u.log.Info("rasterizing card", slog.String(logging.FieldEntry, e.Label()), slog.String(logging.FieldPath, svg))
		if err := u.d.Rasterizer.Rasterize(ctx, svg, tmp, u.s.Width, 0); err != nil {
			_ = os.Remove(tmp)
			return nil, fmt.Errorf("rasterize card %s: %w", e.Label(), err)
		}
		return nil, commit(tmp, path)
	})
	return path, err
}
