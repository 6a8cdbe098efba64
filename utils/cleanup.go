package utils

import (
	"context"
	"log"
	"time"

	"github.com/vnkhanh/notes-backend/repositories"
)

const orphanBatchSize = 100

type ObjectRemover interface {
	Remove(ctx context.Context, path string) error
}

// CleanupOrphanedImages xoá lại các ảnh mồ côi, trả về số ảnh đã xoá được
func CleanupOrphanedImages(ctx context.Context, orphans repositories.OrphanRepository, remover ObjectRemover) (int, error) {
	list, err := orphans.List(ctx, orphanBatchSize)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, o := range list {
		if err := remover.Remove(ctx, o.Path); err != nil {
			log.Printf("Xoá ảnh mồ côi %s thất bại: %v", o.Path, err)
			if err := orphans.MarkAttempt(ctx, o.ID); err != nil {
				log.Printf("Không cập nhật được số lần thử cho %s: %v", o.Path, err)
			}
			continue
		}
		if err := orphans.Resolve(ctx, o.ID); err != nil {
			log.Printf("Không xoá được bản ghi ảnh mồ côi %d: %v", o.ID, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("Đã xoá %d ảnh mồ côi", removed)
	}
	return removed, nil
}

// StartOrphanCleanupJob chạy cleanup ngay khi khởi động rồi lặp lại theo interval cho tới khi ctx bị huỷ
func StartOrphanCleanupJob(ctx context.Context, orphans repositories.OrphanRepository, remover ObjectRemover, interval time.Duration) {
	log.Println("Đang chạy cleanup ảnh mồ côi lần đầu...")
	if _, err := CleanupOrphanedImages(ctx, orphans, remover); err != nil {
		log.Printf("Cleanup ảnh mồ côi lỗi: %v", err)
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Println("Cleanup job được kích hoạt...")
				if _, err := CleanupOrphanedImages(ctx, orphans, remover); err != nil {
					log.Printf("Cleanup ảnh mồ côi lỗi: %v", err)
				}
			}
		}
	}()

	log.Printf("Cleanup job đã được khởi động (chạy mỗi %s)", interval)
}
