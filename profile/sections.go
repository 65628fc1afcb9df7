// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package profile

// WriteHeader emits the usage banner and the per-application include
// stanza that open every generated profile.
func WriteHeader(p *Writer, app string) {
	p.Line(`# Save this file as "application.profile" (change "application" with the`)
	p.Line(`# program name) in ~/.config/firejail directory. Firejail will find it`)
	p.Line(`# automatically every time you sandbox your application.`)
	p.Line(`#`)
	p.Line(`# Run "firejail application" to test it. In the file there are`)
	p.Line(`# some other commands you can try. Enable them by removing the "#".`)
	p.Blank()
	p.Line("# Firejail profile for %s", app)
	p.Line("# Persistent local customizations")
	p.Line("#include %s.local", app)
	p.Line("# Persistent global definitions")
	p.Line("#include globals.local")
	p.Blank()
}

// WriteBlacklistIncludes emits the stock blacklist include section.
// Most entries ship disabled; the generated profile is a starting
// point and the user opts in.
func WriteBlacklistIncludes(p *Writer) {
	p.Line("### Basic Blacklisting ###")
	p.Line("### Enable as many of them as you can! A very important one is")
	p.Line(`### "disable-exec.inc". This will make among other things your home`)
	p.Line("### and /tmp directories non-executable.")
	p.Line("include disable-common.inc\t# dangerous directories like ~/.ssh and ~/.gnupg")
	p.Line("#include disable-devel.inc\t# development tools such as gcc and gdb")
	p.Line("#include disable-exec.inc\t# non-executable directories such as /var, /tmp, and /home")
	p.Line("#include disable-interpreters.inc\t# perl, python, lua etc.")
	p.Line("include disable-programs.inc\t# user configuration for programs such as firefox, vlc etc.")
	p.Line("#include disable-shell.inc\t# sh, bash, zsh etc.")
	p.Line("#include disable-xdg.inc\t# standard user directories: Documents, Pictures, Videos, Music")
	p.Blank()
}
