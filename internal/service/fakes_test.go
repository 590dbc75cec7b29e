package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/service"
	"github.com/linemk/supershop/internal/storage"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// shopState: общее состояние фейковых репозиториев, повторяет каскады БД
type shopState struct {
	mu     sync.Mutex
	nextID int64

	users       map[int64]*models.User
	items       map[int64]*models.Item
	photos      map[int64]*models.Photo
	links       map[int64]*models.ItemPhoto
	stocks      map[int64]*models.ItemStock
	baskets     map[int64]*models.Basket
	basketLines map[int64]*models.BasketItem
	payments    map[int64]*models.Payment
	orders      map[int64]*models.Order
	favourites  map[int64]*models.Favourites
	favItems    map[int64]*models.FavouritesItem

	failFlag map[int64]error
	writes   []string
}

func newShopState() *shopState {
	return &shopState{
		nextID:      100,
		users:       make(map[int64]*models.User),
		items:       make(map[int64]*models.Item),
		photos:      make(map[int64]*models.Photo),
		links:       make(map[int64]*models.ItemPhoto),
		stocks:      make(map[int64]*models.ItemStock),
		baskets:     make(map[int64]*models.Basket),
		basketLines: make(map[int64]*models.BasketItem),
		payments:    make(map[int64]*models.Payment),
		orders:      make(map[int64]*models.Order),
		favourites:  make(map[int64]*models.Favourites),
		favItems:    make(map[int64]*models.FavouritesItem),
		failFlag:    make(map[int64]error),
	}
}

func (s *shopState) id() int64 {
	s.nextID++
	return s.nextID
}

// addItem/addLink/addStock: заполнение состояния в тестах
func (s *shopState) addItem(item *models.Item) *models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.items[item.ID] = item
	return item
}

func (s *shopState) addLink(itemID int64, one, two bool) *models.ItemPhoto {
	s.mu.Lock()
	defer s.mu.Unlock()
	photo := &models.Photo{ID: s.id()}
	photo.Name = fmt.Sprintf("photo-%d.jpg", photo.ID)
	photo.Path = "items/" + photo.Name
	s.photos[photo.ID] = photo
	link := &models.ItemPhoto{ID: s.id(), ItemID: itemID, PhotoID: photo.ID, IsGeneralOne: one, IsGeneralTwo: two}
	s.links[link.ID] = link
	return link
}

func (s *shopState) addStock(itemID int64, color, size string, qty int) *models.ItemStock {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &models.ItemStock{ID: s.id(), ItemID: itemID, ColorID: s.id(), SizeID: s.id(), ColorName: color, SizeName: size, Quantity: qty}
	s.stocks[st.ID] = st
	return st
}

func (s *shopState) item(id int64) *models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[id]; ok {
		cp := *it
		return &cp
	}
	return nil
}

func (s *shopState) link(id int64) *models.ItemPhoto {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.links[id]; ok {
		cp := *l
		return &cp
	}
	return nil
}

func (s *shopState) flagged(itemID int64, slot models.Slot) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, l := range s.links {
		if l.ItemID == itemID && l.Flag(slot) {
			ids = append(ids, l.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *shopState) linesOf(basketID int64) []*models.BasketItem {
	var lines []*models.BasketItem
	for _, l := range s.basketLines {
		if l.BasketID == basketID {
			lines = append(lines, l)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

var errUniqueFlag = errors.New("duplicate key value violates unique constraint item_photos_general_uniq")

// fakeCatalog реализует ItemStorage и PhotoStorage
type fakeCatalog struct{ *shopState }

var (
	_ storage.ItemStorage  = (*fakeCatalog)(nil)
	_ storage.PhotoStorage = (*fakeCatalog)(nil)
)

func (f *fakeCatalog) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	if it := f.item(id); it != nil {
		return it, nil
	}
	return nil, storage.ErrItemNotFound
}

func (f *fakeCatalog) UpdateItem(ctx context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return storage.ErrItemNotFound
	}
	cp := *item
	f.items[item.ID] = &cp
	f.writes = append(f.writes, fmt.Sprintf("item:%d", item.ID))
	return nil
}

func (f *fakeCatalog) SetGeneralPhoto(ctx context.Context, itemID int64, slot models.Slot, linkID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return storage.ErrItemNotFound
	}
	it.SetGeneralPhoto(slot, linkID)
	f.writes = append(f.writes, fmt.Sprintf("ref:%d:%s", itemID, slot))
	return nil
}

func (f *fakeCatalog) IncrementOrderCountTx(ctx context.Context, tx *sql.Tx, itemID int64, by int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return storage.ErrItemNotFound
	}
	it.OrderCount += by
	return nil
}

func (f *fakeCatalog) DeleteItem(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return storage.ErrItemNotFound
	}
	delete(f.items, id)
	for lid, l := range f.links {
		if l.ItemID == id {
			delete(f.links, lid)
		}
	}
	for sid, st := range f.stocks {
		if st.ItemID == id {
			delete(f.stocks, sid)
		}
	}
	return nil
}

func (f *fakeCatalog) GetPhoto(ctx context.Context, id int64) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.photos[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, storage.ErrPhotoNotFound
}

func (f *fakeCatalog) DeletePhoto(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.photos[id]; !ok {
		return storage.ErrPhotoNotFound
	}
	delete(f.photos, id)
	return nil
}

func (f *fakeCatalog) CreateItemPhoto(ctx context.Context, itemID, photoID int64) (*models.ItemPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.PhotoID == photoID {
			return nil, storage.ErrPhotoAlreadyLinked
		}
	}
	link := &models.ItemPhoto{ID: f.id(), ItemID: itemID, PhotoID: photoID}
	f.links[link.ID] = link
	cp := *link
	return &cp, nil
}

func (f *fakeCatalog) GetItemPhoto(ctx context.Context, id int64) (*models.ItemPhoto, error) {
	if l := f.link(id); l != nil {
		return l, nil
	}
	return nil, storage.ErrItemPhotoNotFound
}

func (f *fakeCatalog) ListItemPhotos(ctx context.Context, itemID int64) ([]*models.ItemPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var links []*models.ItemPhoto
	for _, l := range f.links {
		if l.ItemID == itemID {
			cp := *l
			links = append(links, &cp)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	return links, nil
}

func (f *fakeCatalog) DeleteItemPhoto(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[id]; !ok {
		return storage.ErrItemPhotoNotFound
	}
	delete(f.links, id)
	// ON DELETE SET NULL
	for _, it := range f.items {
		for _, slot := range models.Slots {
			if ref := it.GeneralPhoto(slot); ref != nil && *ref == id {
				it.SetGeneralPhoto(slot, nil)
			}
		}
	}
	return nil
}

func (f *fakeCatalog) CountPhotoLinks(ctx context.Context, photoID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.links {
		if l.PhotoID == photoID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCatalog) SetFlag(ctx context.Context, linkID int64, slot models.Slot, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFlag[linkID]; err != nil {
		return err
	}
	link, ok := f.links[linkID]
	if !ok {
		return storage.ErrItemPhotoNotFound
	}
	// частичный уникальный индекс
	if value {
		for _, l := range f.links {
			if l.ID != linkID && l.ItemID == link.ItemID && l.Flag(slot) {
				return errUniqueFlag
			}
		}
	}
	link.SetFlag(slot, value)
	f.writes = append(f.writes, fmt.Sprintf("flag:%d:%s:%t", linkID, slot, value))
	return nil
}

func (f *fakeCatalog) UnflagSlot(ctx context.Context, itemID int64, slot models.Slot, exceptID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.ItemID == itemID && l.ID != exceptID && l.Flag(slot) {
			l.SetFlag(slot, false)
			f.writes = append(f.writes, fmt.Sprintf("flag:%d:%s:false", l.ID, slot))
		}
	}
	return nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeBlobs) Delete(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

// fakeStockRepo реализует StockStorage
type fakeStockRepo struct{ *shopState }

var _ storage.StockStorage = (*fakeStockRepo)(nil)

func (f *fakeStockRepo) FindStock(ctx context.Context, itemID int64, color, size string) (*models.ItemStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.stocks {
		if st.ItemID == itemID && st.ColorName == color && st.SizeName == size {
			cp := *st
			return &cp, nil
		}
	}
	return nil, storage.ErrStockNotFound
}

func (f *fakeStockRepo) GetStockByID(ctx context.Context, id int64) (*models.ItemStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.stocks[id]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, storage.ErrStockNotFound
}

func (f *fakeStockRepo) ListStockByItem(ctx context.Context, itemID int64, filter models.StockFilter) ([]*models.ItemStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ItemStock
	for _, st := range f.stocks {
		if st.ItemID == itemID && anyOrIn(filter.Colors, st.ColorName) && anyOrIn(filter.Sizes, st.SizeName) {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func anyOrIn(list []string, v string) bool {
	return len(list) == 0 || slices.Contains(list, v)
}

func (f *fakeStockRepo) LockStockTx(ctx context.Context, tx *sql.Tx, itemID, colorID, sizeID int64) (*models.ItemStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.stocks {
		if st.ItemID == itemID && st.ColorID == colorID && st.SizeID == sizeID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, storage.ErrStockNotFound
}

func (f *fakeStockRepo) UpdateQuantityTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stocks[id]
	if !ok {
		return storage.ErrStockNotFound
	}
	st.Quantity = quantity
	return nil
}

func (f *fakeStockRepo) DeleteStockTx(ctx context.Context, tx *sql.Tx, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stocks[id]; !ok {
		return storage.ErrStockNotFound
	}
	delete(f.stocks, id)
	// каскад на строки корзин и избранное
	for lid, l := range f.basketLines {
		if l.ProductID == id {
			delete(f.basketLines, lid)
		}
	}
	for fid, fi := range f.favItems {
		if fi.ProductID == id {
			delete(f.favItems, fid)
		}
	}
	return nil
}

// fakeBasketRepo реализует BasketStorage
type fakeBasketRepo struct{ *shopState }

var _ storage.BasketStorage = (*fakeBasketRepo)(nil)

func (f *fakeBasketRepo) GetBasketByID(ctx context.Context, id int64) (*models.Basket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.baskets[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, storage.ErrBasketNotFound
}

func (f *fakeBasketRepo) GetBasketByUser(ctx context.Context, userID int64) (*models.Basket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.baskets {
		if b.UserID == userID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, storage.ErrBasketNotFound
}

func (f *fakeBasketRepo) GetOrCreateBasket(ctx context.Context, userID int64) (*models.Basket, error) {
	if b, err := f.GetBasketByUser(ctx, userID); err == nil {
		return b, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &models.Basket{ID: f.id(), UserID: userID}
	f.baskets[b.ID] = b
	cp := *b
	return &cp, nil
}

func (f *fakeBasketRepo) AddItem(ctx context.Context, basketID, productID int64, quantity int) (*models.BasketItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.basketLines {
		if l.BasketID == basketID && l.ProductID == productID {
			l.Quantity += quantity
			return &models.BasketItem{ID: l.ID, BasketID: basketID, ProductID: productID, Quantity: l.Quantity}, nil
		}
	}
	l := &models.BasketItem{ID: f.id(), BasketID: basketID, ProductID: productID, Quantity: quantity}
	f.basketLines[l.ID] = l
	return &models.BasketItem{ID: l.ID, BasketID: basketID, ProductID: productID, Quantity: quantity}, nil
}

func (f *fakeBasketRepo) UpdateItemQuantity(ctx context.Context, basketID, basketItemID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.basketLines[basketItemID]
	if !ok || l.BasketID != basketID {
		return storage.ErrBasketItemNotFound
	}
	l.Quantity = quantity
	return nil
}

func (f *fakeBasketRepo) DeleteItems(ctx context.Context, basketID int64, ids []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if l, ok := f.basketLines[id]; ok && l.BasketID == basketID {
			delete(f.basketLines, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeBasketRepo) ListItems(ctx context.Context, basketID int64) ([]*models.BasketItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BasketItem
	for _, l := range f.linesOf(basketID) {
		st := f.stocks[l.ProductID]
		it := f.items[st.ItemID]
		out = append(out, &models.BasketItem{
			ID: l.ID, BasketID: l.BasketID, ProductID: l.ProductID, Quantity: l.Quantity,
			ItemID: it.ID, ItemName: it.Name, ColorID: st.ColorID, SizeID: st.SizeID,
			ColorName: st.ColorName, SizeName: st.SizeName,
			Price: it.Price, Discount: it.Discount, StockQuantity: st.Quantity,
		})
	}
	return out, nil
}

func (f *fakeBasketRepo) ListItemsTx(ctx context.Context, tx *sql.Tx, basketID int64) ([]*models.BasketItem, error) {
	return f.ListItems(ctx, basketID)
}

func (f *fakeBasketRepo) ClearTx(ctx context.Context, tx *sql.Tx, basketID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.linesOf(basketID) {
		delete(f.basketLines, l.ID)
	}
	return nil
}

// fakePaymentRepo реализует PaymentStorage
type fakePaymentRepo struct {
	*shopState
	lockErr error
}

var _ storage.PaymentStorage = (*fakePaymentRepo)(nil)

func (f *fakePaymentRepo) CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := &models.Payment{ID: f.id(), UserID: p.UserID, BasketID: p.BasketID, Amount: p.Amount, Status: models.PaymentPending}
	f.payments[stored.ID] = stored
	cp := *stored
	return &cp, nil
}

func (f *fakePaymentRepo) SetExternal(ctx context.Context, id int64, externalID, confirmationURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return storage.ErrPaymentNotFound
	}
	ext := externalID
	p.ExternalPaymentID = &ext
	p.ConfirmationURL = confirmationURL
	return nil
}

func (f *fakePaymentRepo) GetPaymentByID(ctx context.Context, id int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, storage.ErrPaymentNotFound
}

func (f *fakePaymentRepo) LockPaymentByExternalIDTx(ctx context.Context, tx *sql.Tx, externalID string) (*models.Payment, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ExternalPaymentID != nil && *p.ExternalPaymentID == externalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, storage.ErrPaymentNotFound
}

func (f *fakePaymentRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return storage.ErrPaymentNotFound
	}
	p.Status = status
	return nil
}

// fakeOrderRepo реализует OrderStorage
type fakeOrderRepo struct{ *shopState }

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func (f *fakeOrderRepo) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := *order
	o.ID = f.id()
	f.orders[o.ID] = &o
	return o.ID, nil
}

func (f *fakeOrderRepo) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[item.OrderID]
	if !ok {
		return storage.ErrOrderNotFound
	}
	cp := *item
	cp.ID = f.id()
	o.Items = append(o.Items, &cp)
	return nil
}

func (f *fakeOrderRepo) SetStatusByPaymentTx(ctx context.Context, tx *sql.Tx, paymentID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.PaymentID != nil && *o.PaymentID == paymentID {
			o.Status = status
			return nil
		}
	}
	return storage.ErrOrderNotFound
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *shopState) orderByPayment(paymentID int64) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.PaymentID != nil && *o.PaymentID == paymentID {
			return o
		}
	}
	return nil
}

// fakeFavouritesRepo реализует FavouritesStorage
type fakeFavouritesRepo struct{ *shopState }

var _ storage.FavouritesStorage = (*fakeFavouritesRepo)(nil)

func (f *fakeFavouritesRepo) GetOrCreateFavourites(ctx context.Context, userID int64) (*models.Favourites, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fav := range f.favourites {
		if fav.UserID == userID {
			cp := *fav
			return &cp, nil
		}
	}
	fav := &models.Favourites{ID: f.id(), UserID: userID}
	f.favourites[fav.ID] = fav
	cp := *fav
	return &cp, nil
}

func (f *fakeFavouritesRepo) Exists(ctx context.Context, favouritesID, productID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fi := range f.favItems {
		if fi.FavouritesID == favouritesID && fi.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFavouritesRepo) AddItem(ctx context.Context, favouritesID, productID int64) (*models.FavouritesItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fi := &models.FavouritesItem{ID: f.id(), FavouritesID: favouritesID, ProductID: productID}
	f.favItems[fi.ID] = fi
	cp := *fi
	return &cp, nil
}

func (f *fakeFavouritesRepo) RemoveItem(ctx context.Context, favouritesID, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, fi := range f.favItems {
		if fi.FavouritesID == favouritesID && fi.ProductID == productID {
			delete(f.favItems, id)
			return nil
		}
	}
	return storage.ErrFavouriteNotFound
}

func (f *fakeFavouritesRepo) ListItems(ctx context.Context, favouritesID int64) ([]*models.FavouritesItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.FavouritesItem
	for _, fi := range f.favItems {
		if fi.FavouritesID == favouritesID {
			cp := *fi
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeUserRepo реализует UserStorage
type fakeUserRepo struct {
	users map[string]*models.User // ключ: телефон
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	user, ok := f.users[phone]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Phone]; ok {
		return nil, storage.ErrAlreadyExists
	}
	user.ID = int64(len(f.users) + 1)
	user.IsActive = true
	f.users[user.Phone] = user
	return user, nil
}

// fakeProvider: платежный провайдер в памяти
type fakeProvider struct {
	mu        sync.Mutex
	n         int
	createErr error
	status    map[string]string
	requests  []decimal.Decimal
}

var _ service.PaymentProvider = (*fakeProvider)(nil)

func (f *fakeProvider) Create(ctx context.Context, amount decimal.Decimal, description string) (*models.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.n++
	f.requests = append(f.requests, amount)
	id := fmt.Sprintf("ext-%d", f.n)
	return &models.PaymentSession{ExternalID: id, Status: "pending", ConfirmationURL: "https://pay.example/" + id}, nil
}

func (f *fakeProvider) FindOne(ctx context.Context, externalID string) (*models.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.status[externalID]
	if !ok {
		return nil, errors.New("payment not found at provider")
	}
	return &models.PaymentSession{ExternalID: externalID, Status: status}, nil
}
