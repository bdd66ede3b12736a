package cli

import (
	"fmt"

	"github.com/modmill/modmill/pkg/resolve"
)

// renderReport prints the per-mod outcome of a compatibility check in
// the pack's entry order, followed by a summary line.
func renderReport(report *resolve.Report) {
	tbl := newTable("Mod", "Installed", report.GameVersion, "Status")
	for _, res := range report.Results {
		status := styleError.Render("incompatible")
		target := styleDim.Render("-")
		if res.Compatible() {
			status = styleSuccess.Render("ok")
			target = res.Resolution.Build.VersionNumber
		}
		tbl.Row(res.Entry.Title, res.Entry.VersionNumber, target, status)
	}
	fmt.Println(tbl.Render())

	compatible := len(report.Compatible())
	incompatible := len(report.Incompatible())
	switch {
	case incompatible == 0:
		printSuccess("All %d mods have a build for %s", compatible, report.GameVersion)
	case compatible == 0 && incompatible > 0:
		printWarning("None of the %d mods have a build for %s", incompatible, report.GameVersion)
	default:
		printWarning("%d of %d mods have no build for %s", incompatible, compatible+incompatible, report.GameVersion)
	}
}
