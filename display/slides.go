package display

import "github.com/PuerkitoBio/goquery"

// SlideCount returns the number of slides in the layout
func (d *Display) SlideCount() int {
	return d.slides
}

// ActiveSlide returns the index of the slide on screen, -1 without slides
func (d *Display) ActiveSlide() int {
	d.mtx.RLock()
	defer d.mtx.RUnlock()

	if d.slides == 0 {
		return -1
	}

	return d.active
}

// ShowSlide marks the slide at index as the only active one. Out of range indexes wrap around
func (d *Display) ShowSlide(index int) int {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.slides == 0 {
		return -1
	}

	return d.showSlide(index)
}

// NextSlide advances to the following slide, wrapping from the last one to the first
func (d *Display) NextSlide() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.slides == 0 {
		return -1
	}

	return d.showSlide(d.active + 1)
}

func (d *Display) showSlide(index int) int {
	index %= d.slides
	if index < 0 {
		index += d.slides
	}

	d.doc.Find(selectorSlide).Each(func(i int, s *goquery.Selection) {
		if i == index {
			s.AddClass(classActive)
			return
		}
		s.RemoveClass(classActive)
	})
	d.active = index

	return index
}
