package scandown_test

import (
	"fmt"

	"github.com/jcorbin/mdc/scandown"
)

func Example() {
	out, err := scandown.Compile(`# Hello

Some *emphasis* and a [link][home].

[home]: http://example.com "Home"
`, scandown.DefaultOptions())
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	fmt.Print(out)

	// Output:
	// <h1 id="hello">Hello</h1>
	// <p>Some <em>emphasis</em> and a <a href="http://example.com" title="Home">link</a>.</p>
}

func ExampleTextRenderer() {
	opts := scandown.DefaultOptions()
	opts.Renderer = scandown.TextRenderer{}
	out, err := scandown.Compile("Plain **text**, please.\n\n- one\n- two\n", opts)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	fmt.Print(out)

	// Output:
	// Plain text, please.
	//
	// one
	// two
}
