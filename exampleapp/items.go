package exampleapp

import (
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/webapp"
)

// Item is an entry of the catalog served under /api/items.
type Item struct {
	ID    int
	Name  string
	Price float64
	Tags  []string
}

func (i Item) writeJSON(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("id").Int(i.ID)
	obj.Name("name").String(i.Name)
	obj.Name("price").Float64(i.Price)
	tags := obj.Name("tags").Array()
	for _, tag := range i.Tags {
		w.String(tag)
	}
	tags.End()
	obj.End()
}

type itemStore struct {
	items  map[int]Item
	nextID int
	lock   sync.Mutex
}

func newItemStore() *itemStore {
	s := &itemStore{items: make(map[int]Item), nextID: 1}
	s.add(Item{Name: "kettle", Price: 24.5, Tags: []string{"kitchen"}})
	s.add(Item{Name: "teapot", Price: 18, Tags: []string{"kitchen", "tea"}})
	return s
}

func (s *itemStore) add(item Item) Item {
	s.lock.Lock()
	defer s.lock.Unlock()
	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = item
	return item
}

func (s *itemStore) get(id int) (Item, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	item, ok := s.items[id]
	return item, ok
}

func (s *itemStore) remove(id int) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

func (s *itemStore) all() []Item {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		ret = append(ret, item)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

func itemFromValue(value ldvalue.Value) (Item, error) {
	name := value.GetByKey("name")
	if name.StringValue() == "" {
		return Item{}, webapp.NewHTTPError(http.StatusUnprocessableEntity, "name is required")
	}
	price := value.GetByKey("price")
	if !price.IsNull() && !price.IsNumber() {
		return Item{}, webapp.NewHTTPError(http.StatusUnprocessableEntity, "price must be a number")
	}
	item := Item{Name: name.StringValue(), Price: price.Float64Value()}
	for _, tag := range value.GetByKey("tags").AsValueArray().AsSlice() {
		item.Tags = append(item.Tags, tag.StringValue())
	}
	return item, nil
}

func itemID(req message.ServerRequest) (int, error) {
	s, _ := req.Attribute("id").(string)
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, webapp.NewHTTPError(http.StatusNotFound, "")
	}
	return id, nil
}

func (a *App) listItems(req message.ServerRequest) (message.Response, error) {
	items := a.items.all()
	if tag := req.QueryParams().Get("tag"); tag != "" {
		filtered := items[:0]
		for _, item := range items {
			for _, t := range item.Tags {
				if t == tag {
					filtered = append(filtered, item)
					break
				}
			}
		}
		items = filtered
	}
	return message.NewResponse(http.StatusOK).WithJSONWriter(func(w *jwriter.Writer) {
		arr := w.Array()
		for _, item := range items {
			item.writeJSON(w)
		}
		arr.End()
	}), nil
}

func (a *App) createItem(req message.ServerRequest) (message.Response, error) {
	item, err := itemFromValue(req.ParsedBody())
	if err != nil {
		return message.Response{}, err
	}
	item = a.items.add(item)
	location, err := a.URLFor("item", "id", strconv.Itoa(item.ID))
	if err != nil {
		return message.Response{}, err
	}
	return message.NewResponse(http.StatusCreated).
		WithHeader("Location", location).
		WithJSONWriter(item.writeJSON), nil
}

func (a *App) getItem(req message.ServerRequest) (message.Response, error) {
	id, err := itemID(req)
	if err != nil {
		return message.Response{}, err
	}
	item, ok := a.items.get(id)
	if !ok {
		return message.Response{}, webapp.NewHTTPError(http.StatusNotFound, "no such item")
	}
	return message.NewResponse(http.StatusOK).WithJSONWriter(item.writeJSON), nil
}

func (a *App) deleteItem(req message.ServerRequest) (message.Response, error) {
	id, err := itemID(req)
	if err != nil {
		return message.Response{}, err
	}
	if !a.items.remove(id) {
		return message.Response{}, webapp.NewHTTPError(http.StatusNotFound, "no such item")
	}
	return message.NewResponse(http.StatusNoContent), nil
}
