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

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	require := require.New(t)

	r, err := parseVersion("v1.2.3")
	require.NoError(err)
	require.Equal(release{1, 2, 3, ""}, r)

	r, err = parseVersion("0.1.0-rc1\n")
	require.NoError(err)
	require.Equal(release{0, 1, 0, "rc1"}, r)

	r, err = parseVersion(defaultVersion)
	require.NoError(err)
	require.Equal(release{0, 1, 0, ""}, r)

	for _, s := range []string{"", "1.2", "1.2.3.4", "1.x.3", "1.2.300"} {
		_, err := parseVersion(s)
		require.Error(err, s)
	}
}

func TestGenerate(t *testing.T) {
	require := require.New(t)

	require.Equal("Copyright (c) 2019 Andreas T Jonsson", copyright(2019, 2019))
	require.Equal("Copyright (c) 2019-2021 Andreas T Jonsson", copyright(2019, 2021))

	src, err := generate("version", release{0, 1, 0, "rc1"}, "abc", copyright(2019, 2021))
	require.NoError(err)
	require.Contains(string(src), "// Code generated by tools/version. DO NOT EDIT.")
	require.Contains(string(src), "Current   = Version{0, 1, 0, \"rc1\"}")
	require.Contains(string(src), "Hash      = \"abc\"")
}
