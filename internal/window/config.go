// internal/window/config.go
package window

import (
	"strings"

	"github.com/xkilldash9x/boxflow/internal/config"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/resources"
)

var textAligns = map[string]css.TextAlign{
	"left":    css.TextAlignLeft,
	"center":  css.TextAlignCenter,
	"right":   css.TextAlignRight,
	"justify": css.TextAlignJustify,
}

// DefaultStylesheet returns a sheet with one rule on rootTag carrying the
// configured font and text defaults, followed by the rules of user. Later
// rules win, so user rules override the defaults.
func DefaultStylesheet(rootTag string, cfg config.Interface, user *css.Stylesheet) *css.Stylesheet {
	l, t := cfg.Layout(), cfg.Text()
	sheet := &css.Stylesheet{}
	sheet.Add(css.Path(css.Type(rootTag)),
		css.FontFamily(l.DefaultFontFamily),
		css.FontSize(css.Px(l.DefaultFontSize)),
		css.TabWidth(t.TabWidth),
		css.TextAlignProp(textAligns[strings.ToLower(t.DefaultJustify)]),
	)
	if user != nil {
		sheet.Rules = append(sheet.Rules, user.Rules...)
	}
	return sheet
}

// OptionsFromConfig maps the configuration onto window options. Configured
// font families are registered on top of the built-in Go fonts.
func OptionsFromConfig(cfg config.Interface, sheet *css.Stylesheet) Options {
	reg := resources.NewDefaultRegistry()
	for family, paths := range cfg.Fonts().Families {
		reg.RegisterPaths(family, paths...)
	}
	return Options{
		Stylesheet:          DefaultStylesheet("body", cfg, sheet),
		Fonts:               reg,
		FontLoadParallelism: cfg.Resources().FontLoadParallelism,
		MaxFocusDepth:       cfg.Events().MaxFocusRecursion,
	}
}
