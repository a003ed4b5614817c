package payment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sorodev/marketplace-client/pkg/config"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
)

// DirWriter stores receipts as PDF files under one directory.
type DirWriter struct {
	dir string
}

func NewDirWriter(cfg config.ReceiptsConfig) *DirWriter {
	return &DirWriter{dir: cfg.Dir}
}

func (w *DirWriter) Write(orderID int64, data []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create receipts directory")
	}
	path := filepath.Join(w.dir, fmt.Sprintf("commande-%d.pdf", orderID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write receipt file")
	}
	return path, nil
}
