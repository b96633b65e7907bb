package cmd

const bannerText = `
  _              _             _
 | |_ ___   ___ | | __ _  __ _| |_ ___
 | __/ _ \ / _ \| |/ _' |/ _' | __/ _ \
 | || (_) | (_) | | (_| | (_| | ||  __/
  \__\___/ \___/|_|\__, |\__,_|\__\___|
                   |___/

        Plugin tool gateway
`

// Banner returns the CLI banner string.
func Banner() string {
	return bannerText
}
