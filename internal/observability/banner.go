package observability

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset    = "\033[0m"
	colorBold     = "\033[1m"
	colorPurple   = "\033[35m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
)

// termMu serialises terminal output so a status line is never split by a
// concurrent log write.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// ------------------------------------------------------------
// TermWriter – a mutex-guarded io.Writer for log output.
// ------------------------------------------------------------

type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
func NewTermWriter() *termWriter {
	return &termWriter{}
}

// ------------------------------------------------------------
// Banner
// ------------------------------------------------------------

func PrintBanner() {
	banner := `
    ____  ____________________  ____  ___
   / __ \/  _/ ____/_  __/ / / /  |/  /
  / / / // // /     / / / / / / /|_/ /
 / /_/ // // /___  / / / /_/ / /  / /
/_____/___/\____/ /_/  \____/_/  /_/

        >> SPEAK. WATCH. DONE. <<
`

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

// PrintStatusLine prints a single status line with the current role, task,
// uptime and heap usage.
func PrintStatusLine() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	st := Snapshot()
	task := st.Task
	if task == "" {
		task = "Waiting..."
	}
	if len(task) > 25 {
		task = task[:22] + "..."
	}

	roleColor := colorNeonCyan
	if st.Role == RoleExecuting {
		roleColor = colorNeonMag
	}

	line := fmt.Sprintf("%s[%s]%s %s%-9s%s %v | %s | up %v | %.1fMB\n",
		colorPurple, time.Now().Format("15:04:05"), colorReset,
		colorBold+roleColor, st.Role, colorReset,
		time.Since(st.Since).Round(time.Second),
		task,
		time.Since(startTime).Round(time.Second),
		float64(m.Alloc)/1024/1024,
	)

	termMu.Lock()
	fmt.Print(line)
	termMu.Unlock()
}
