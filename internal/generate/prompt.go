package generate

import (
	"fmt"
	"strings"
)

// loaderExamples are mods known to exist on Modrinth per loader, used
// to anchor the model's output format and scope.
var loaderExamples = map[string][]string{
	"fabric": {
		"Sodium", "Lithium", "Iris Shaders", "FerriteCore", "LazyDFU",
		"Fabric API", "REI", "WTHIT", "AppleSkin", "Xaero's Minimap",
	},
	"forge": {
		"JEI", "Iron Chests", "Waystones", "Storage Drawers", "Create",
		"Botania", "Biomes O' Plenty", "Applied Energistics 2",
		"JourneyMap", "AppleSkin",
	},
	"quilt": {
		"Sodium", "Lithium", "Iris Shaders", "FerriteCore",
		"Quilted Fabric API", "REI", "WTHIT", "AppleSkin",
	},
	"neoforge": {
		"JEI", "Iron Chests", "Waystones", "Storage Drawers",
		"JourneyMap", "Xaero's Minimap", "AppleSkin", "Create",
	},
}

// promptLimits bound how much history goes into a prompt.
const (
	maxVerifiedInPrompt = 15
	maxFailedInPrompt   = 10
)

func examplesFor(loader string) string {
	examples, ok := loaderExamples[loader]
	if !ok {
		examples = loaderExamples["fabric"]
	}
	return strings.Join(examples, ", ")
}

func historyContext(history History) string {
	var b strings.Builder
	if len(history.Verified) > 0 {
		verified := history.Verified
		if len(verified) > maxVerifiedInPrompt {
			verified = verified[:maxVerifiedInPrompt]
		}
		fmt.Fprintf(&b, "RECENTLY VERIFIED MODS (use these as reference): %s\n", strings.Join(verified, ", "))
	}
	if len(history.Failed) > 0 {
		failed := history.Failed
		if len(failed) > maxFailedInPrompt {
			failed = failed[:maxFailedInPrompt]
		}
		fmt.Fprintf(&b, "AVOID THESE MODS (not found on Modrinth): %s\n", strings.Join(failed, ", "))
	}
	return b.String()
}

func primaryPrompt(req Request, history History) string {
	return fmt.Sprintf(`Generate mods that definitely exist on Modrinth for these exact specifications.

Minecraft version: %s (exact compatibility required)
Mod loader: %s (must support this loader)
Theme: %s

Verified %s mods on Modrinth: %s

%s
Requirements:
1. Every mod must exist on Modrinth.com
2. Every mod must support the %s loader
3. Every mod must support Minecraft %s
4. Do not suggest mods exclusive to other platforms or loaders
5. Do not suggest discontinued mods

Generate 20-25 mods that pass all checks. Be conservative: fewer mods
that definitely exist beat many that might not.

Output a JSON array only:
["Exact Modrinth Mod Name 1", "Exact Modrinth Mod Name 2", ...]`,
		req.Version, req.Loader, req.Theme,
		req.Loader, examplesFor(req.Loader),
		historyContext(history),
		req.Loader, req.Version,
	)
}

func improvementPrompt(req Request, failed []string) string {
	return fmt.Sprintf(`The following mods were NOT found on Modrinth for %s %s:
%s

Generate 10 alternative mods for the theme %q that:
1. Definitely exist on Modrinth
2. Support %s
3. Support %s
4. Are similar to the failed mods but actually available

Focus on well-established, popular mods only.

JSON array: ["replacement mod 1", "replacement mod 2", ...]`,
		req.Loader, req.Version,
		strings.Join(failed, ", "),
		req.Theme,
		req.Loader, req.Version,
	)
}

func fallbackPrompt(req Request) string {
	return fmt.Sprintf(`Generate 15 verified Modrinth mods.

Minecraft: %s
Loader: %s
Theme: %s

Only suggest mods you are certain exist on Modrinth for this loader
and version.

JSON only: ["verified mod 1", "verified mod 2", ...]`,
		req.Version, req.Loader, req.Theme,
	)
}
