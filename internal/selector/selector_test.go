package selector

import "testing"

func TestLocatorPrefersIDThenClassThenTag(t *testing.T) {
	doc, err := Parse(`<html><body>
		<img id="hero" class="wide banner" src="a.png">
		<img class="thumb small" src="b.png">
		<img src="c.png">
	</body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	imgs := FindAll(doc, "img")
	if len(imgs) != 3 {
		t.Fatalf("expected 3 images, got %d", len(imgs))
	}
	want := []string{"#hero", ".thumb", "img"}
	for i, img := range imgs {
		if got := Locator(img); got != want[i] {
			t.Errorf("image %d: expected locator %q, got %q", i, want[i], got)
		}
	}
	if got := Locator(nil); got != "unknown" {
		t.Errorf("expected unknown for nil node, got %q", got)
	}
}

func TestResolveRoundTripsLocators(t *testing.T) {
	doc, err := Parse(`<html><body><div class="card"><input id="email"></div><p>x</p>` +
		`<div class="user"><input id="user.email"><img id="logo.main"><input id="2fa"></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range FindAll(doc, "div", "input", "img", "p") {
		loc := Locator(n)
		if got := Resolve(doc, loc); got != n {
			t.Errorf("Resolve(%q) did not return the located node", loc)
		}
	}
}

func TestResolveLiteralFallback(t *testing.T) {
	doc, err := Parse(`<html><body><span id="1st:item">x</span></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	n := Resolve(doc, "#1st:item")
	if n == nil || n.Data != "span" {
		t.Fatalf("expected literal id match, got %v", n)
	}
	if Resolve(doc, General) != nil {
		t.Error("general locator must not resolve")
	}
	if Resolve(doc, "#missing") != nil {
		t.Error("unknown id must not resolve")
	}
}

func TestResolveFallsBackToSelector(t *testing.T) {
	doc, err := Parse(`<html><body><div id="main"><a class="btn">x</a></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if n := Resolve(doc, "#main .btn"); n == nil || n.Data != "a" {
		t.Fatalf("Resolve(#main .btn) = %v, want the link", n)
	}
}

func TestAttrHelpers(t *testing.T) {
	doc, err := Parse(`<html><body><img alt="" src="x.png"></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	img := First(doc, "img")
	if !HasAttr(img, "alt") || Attr(img, "alt") != "" {
		t.Fatal("empty alt should be present with empty value")
	}
	SetAttr(img, "alt", "Logo")
	SetAttr(img, "role", "img")
	if Attr(img, "alt") != "Logo" || Attr(img, "role") != "img" {
		t.Fatalf("SetAttr did not update attributes: %v", img.Attr)
	}
	if !RemoveAttr(img, "role") || HasAttr(img, "role") {
		t.Fatal("RemoveAttr did not remove role")
	}
	if RemoveAttr(img, "role") {
		t.Fatal("RemoveAttr reported removing an absent attribute")
	}
}

func TestTextSkipsScriptsAndCollapsesWhitespace(t *testing.T) {
	doc, err := Parse(`<html><body><main>  Hello
		<b>world</b><script>var x = 1;</script></main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if got := Text(First(doc, "main")); got != "Hello world" {
		t.Fatalf("expected %q, got %q", "Hello world", got)
	}
}
