// Package common holds the helpers shared by the sycd commands.
package common

import (
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var barStyle = mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")

// InitImportBar adds a bar counting imported domains to p. The returned
// DomainName is rendered after the bar until it completes.
func InitImportBar(p *mpb.Progress, total int) (*mpb.Bar, *DomainName) {
	const label = "Importing"
	current := new(DomainName)
	bar := p.New(int64(total), barStyle,
		mpb.PrependDecorators(
			decor.Name(label, decor.WC{W: len(label) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WC{W: 8}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Any(current.decor, decor.WC{W: 24, C: decor.DindentRight}), "Complete"),
		),
	)
	return bar, current
}

// DomainName is the domain label shown next to an import bar.
type DomainName struct {
	mu   sync.Mutex
	name string
}

func (d *DomainName) Set(name string) {
	d.mu.Lock()
	d.name = name
	d.mu.Unlock()
}

func (d *DomainName) decor(decor.Statistics) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}
