package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/wax/internal/index"
)

// OpenExport opens an indexed export in $EDITOR at the source line of the
// hit message, or at the top when hitMsgID is negative.
func OpenExport(db *index.DB, exportKey string, hitMsgID int) error {
	exp, err := db.GetExportByKey(exportKey)
	if err != nil {
		return fmt.Errorf("get export: %w", err)
	}

	lineNum := 1
	if hitMsgID >= 0 {
		msgs, hitIdx, _, _, err := db.GetMessagesWindow(exportKey, hitMsgID, 0)
		if err == nil && hitIdx >= 0 {
			lineNum = msgs[hitIdx].LineNumber
		}
	}

	return OpenFile(exp.FilePath, lineNum)
}

// OpenFile opens filePath in $EDITOR (less when unset) at lineNum.
func OpenFile(filePath string, lineNum int) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, filePath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	if lineNum < 1 {
		lineNum = 1
	}
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"less"}
	}
	name, extra := fields[0], fields[1:]
	base := filepath.Base(name)

	var args []string
	switch {
	case strings.Contains(base, "vim") || strings.Contains(base, "vi") || base == "nano" || base == "emacs":
		args = []string{"+" + strconv.Itoa(lineNum), filePath}
	case strings.Contains(base, "code"):
		args = []string{"--goto", filePath + ":" + strconv.Itoa(lineNum)}
	case strings.Contains(base, "less"):
		args = []string{"+" + strconv.Itoa(lineNum), filePath}
	case base == "subl" || base == "hx":
		args = []string{filePath + ":" + strconv.Itoa(lineNum)}
	default:
		args = []string{filePath}
	}
	return exec.Command(name, append(extra, args...)...)
}
