/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

// Command version regenerates version/current.go from the release tag.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const defaultVersion = "0.1.0"

type release struct {
	Major, Minor, Patch int
	Build               string
}

// parseVersion accepts tags like v1.2.3, 1.2.3-rc1 and 1.2.3+7. Anything
// after the patch number becomes the build string.
func parseVersion(s string) (release, error) {
	var r release
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s, r.Build = s[:i], s[i+1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return r, fmt.Errorf("invalid version format: %q", s)
	}
	for i, dst := range []*int{&r.Major, &r.Minor, &r.Patch} {
		n, err := strconv.ParseUint(parts[i], 10, 8)
		if err != nil {
			return r, fmt.Errorf("invalid version component %q: %w", parts[i], err)
		}
		*dst = int(n)
	}
	return r, nil
}

func copyright(since, now int) string {
	years := strconv.Itoa(since)
	if now > since {
		years = fmt.Sprintf("%d-%d", since, now)
	}
	return "Copyright (c) " + years + " Andreas T Jonsson"
}

func gitOutput(args ...string) string {
	res, err := exec.Command("git", args...).Output()
	if err != nil {
		log.Printf("git %s: %v", args[0], err)
		return ""
	}
	return strings.TrimSpace(string(res))
}

func generate(pkg string, r release, hash, notice string) ([]byte, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]interface{}{
		"pkg":     pkg,
		"release": r,
		"hash":    hash,
		"copy":    notice,
	})
	if err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

func main() {
	file := flag.String("file", "-", "Save the generated output to file.")
	pkg := flag.String("package", "version", "Package name of the generated output.")
	env := flag.String("variable", "MEMSTEP_VERSION", "Environment variable overriding the release tag.")
	since := flag.Int("since", 2019, "First copyright year.")
	flag.Parse()

	version := os.Getenv(*env)
	if version == "" {
		version = gitOutput("describe", "--tags", "--abbrev=0")
	}
	r, err := parseVersion(version)
	if err != nil {
		log.Printf("%v. Defaulting to %s", err, defaultVersion)
		r, _ = parseVersion(defaultVersion)
	}

	src, err := generate(*pkg, r, gitOutput("rev-parse", "HEAD"), copyright(*since, time.Now().Year()))
	if err != nil {
		log.Fatalln(err)
	}

	if *file == "-" {
		os.Stdout.Write(src)
		return
	}
	if err := os.MkdirAll(filepath.Dir(*file), 0777); err != nil {
		log.Fatalln(err)
	}
	if err := os.WriteFile(*file, src, 0666); err != nil {
		log.Fatalln(err)
	}
}

var tmpl = template.Must(template.New("current").Parse(`/*
{{.copy}}

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

// Code generated by tools/version. DO NOT EDIT.

package {{.pkg}}

var (
	Current = Version{ {{.release.Major}}, {{.release.Minor}}, {{.release.Patch}}, {{printf "%q" .release.Build}} }
	Copyright = {{printf "%q" .copy}}
	Hash = {{printf "%q" .hash}}
)
`))
