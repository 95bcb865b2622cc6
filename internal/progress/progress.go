package progress

import (
	"io"
	"sync"

	"findfiles/internal/models"

	"github.com/pterm/pterm"
)

type ProgressReader struct {
	Reader   io.Reader
	Callback func(int64)
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.Callback(int64(n))
	return n, err
}

// Reporter renders search events on the console.
type Reporter struct {
	info    pterm.PrefixPrinter
	success pterm.PrefixPrinter
	warning pterm.PrefixPrinter
}

// NewReporter writes informational lines to out and warnings to errOut.
func NewReporter(out, errOut io.Writer) *Reporter {
	return &Reporter{
		info:    *pterm.Info.WithWriter(out),
		success: *pterm.Success.WithWriter(out),
		warning: *pterm.Warning.WithWriter(errOut),
	}
}

func (r *Reporter) Notify(ev models.Event) {
	switch ev.Type {
	case models.EventSearching:
		r.info.Printfln("Searching in %s ...", ev.Path)
	case models.EventExtracted:
		r.info.Printfln("archive extracted to folder %s ...", ev.Path)
	case models.EventFound:
		r.success.Printfln("Found %d file(s)!", ev.Count)
	case models.EventWarning:
		r.warning.Println(ev.Message)
	}
}

// Func adapts a plain function to models.Observer.
type Func func(models.Event)

func (f Func) Notify(ev models.Event) { f(ev) }

// Discard drops every event.
var Discard models.Observer = Func(func(models.Event) {})

// ExtractionBar shows archive extraction progress in bytes read.
type ExtractionBar struct {
	mu      sync.Mutex
	bar     *pterm.ProgressbarPrinter
	started bool
}

func NewExtractionBar(title string, out io.Writer) *ExtractionBar {
	return &ExtractionBar{bar: pterm.DefaultProgressbar.WithTitle(title).WithWriter(out).WithMaxWidth(100).WithShowCount(false)}
}

// Update is a ProgressCallback. The bar starts on the first call, once the
// total is known.
func (eb *ExtractionBar) Update(current, total int64) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if total <= 0 {
		return
	}
	if !eb.started {
		bar, err := eb.bar.WithTotal(int(total)).Start()
		if err != nil {
			pterm.Error.Printf("Failed to start progress bar: %v\n", err)
			return
		}
		eb.bar = bar
		eb.started = true
	}
	// pterm stops the bar itself once Current reaches Total
	if eb.bar.IsActive && int(current) > eb.bar.Current {
		eb.bar.Add(int(current) - eb.bar.Current)
	}
}

func (eb *ExtractionBar) Stop() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.bar.IsActive {
		eb.bar.Stop()
	}
}
