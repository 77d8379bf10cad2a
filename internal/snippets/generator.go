// Package snippets renders the embed snippets site owners paste into their
// pages to load the tracking script and mark up conversion targets.
package snippets

import (
	"fmt"
	"strings"
)

type Framework string

const (
	FrameworkHTML   Framework = "html"
	FrameworkNextJS Framework = "nextjs"
	FrameworkReact  Framework = "react"
)

// Frameworks lists the supported targets.
var Frameworks = []Framework{FrameworkHTML, FrameworkNextJS, FrameworkReact}

func ParseFramework(s string) (Framework, error) {
	f := Framework(strings.ToLower(s))
	for _, known := range Frameworks {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown framework %q (supported: html, nextjs, react)", s)
}

type Config struct {
	TestID    string
	ServerURL string
}

// Generate returns the embed snippet for a framework.
func Generate(f Framework, cfg Config) (string, error) {
	src := fmt.Sprintf("%s/pf.js", cfg.ServerURL)
	switch f {
	case FrameworkHTML:
		return fmt.Sprintf(`<script src=%q data-pf-test=%q defer></script>
<!-- mark any element as a conversion target: -->
<button data-pf-convert="cta_click" data-pf-value="1">Get Started</button>`, src, cfg.TestID), nil
	case FrameworkNextJS:
		return fmt.Sprintf(`import Script from 'next/script';

export function GrowthTracking() {
  return <Script src=%q data-pf-test=%q strategy="afterInteractive" />;
}`, src, cfg.TestID), nil
	case FrameworkReact:
		return fmt.Sprintf(`useEffect(() => {
  const s = document.createElement('script');
  s.src = %q;
  s.dataset.pfTest = %q;
  s.defer = true;
  document.head.appendChild(s);
  return () => s.remove();
}, []);`, src, cfg.TestID), nil
	default:
		return "", fmt.Errorf("unknown framework %q", f)
	}
}
