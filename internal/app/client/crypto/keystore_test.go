package crypto

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestKeyStore(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "keys", "master.key")

	// Тест 1: Создание хранилища
	store, err := NewKeyStore(keyPath)
	if err != nil {
		t.Fatalf("Ошибка создания хранилища: %v", err)
	}

	// Тест 2: Загрузка до сохранения
	if _, err := store.Load(); err != ErrKeyNotFound {
		t.Errorf("Ожидалась ErrKeyNotFound, получено: %v", err)
	}
	if store.Exists() {
		t.Error("Файл ключа не должен существовать до сохранения")
	}

	// Тест 3: Сохранение ключа
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("Ошибка генерации ключа: %v", err)
	}
	if err := store.Store(key); err != nil {
		t.Fatalf("Ошибка сохранения ключа: %v", err)
	}
	if !store.Exists() {
		t.Error("Файл ключа должен существовать после сохранения")
	}

	// Тест 4: Права доступа к файлу
	if runtime.GOOS != "windows" {
		info, err := os.Stat(keyPath)
		if err != nil {
			t.Fatalf("Ошибка чтения атрибутов файла: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("Неправильные права файла ключа: %o", perm)
		}
	}

	// Тест 5: Загрузка ключа
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки ключа: %v", err)
	}
	if string(loaded) != string(key) {
		t.Error("Загруженный ключ не совпадает с сохраненным")
	}

	// Тест 6: Удаление ключа
	if err := store.Delete(); err != nil {
		t.Fatalf("Ошибка удаления ключа: %v", err)
	}
	if store.Exists() {
		t.Error("Файл ключа должен быть удален")
	}

	// Тест 7: Повторное удаление не является ошибкой
	if err := store.Delete(); err != nil {
		t.Errorf("Повторное удаление вернуло ошибку: %v", err)
	}
}

func TestKeyStore_RejectsBadKey(t *testing.T) {
	store, err := NewKeyStore(filepath.Join(t.TempDir(), "master.key"))
	if err != nil {
		t.Fatalf("Ошибка создания хранилища: %v", err)
	}

	if err := store.Store([]byte("short")); err == nil {
		t.Error("Сохранение короткого ключа должно вернуть ошибку")
	}
}

func TestKeyStore_CorruptedFile(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "master.key")

	if err := os.WriteFile(keyPath, []byte("not json"), 0600); err != nil {
		t.Fatalf("Ошибка подготовки файла: %v", err)
	}

	store, err := NewKeyStore(keyPath)
	if err != nil {
		t.Fatalf("Ошибка создания хранилища: %v", err)
	}

	if _, err := store.Load(); err == nil {
		t.Error("Загрузка поврежденного файла должна вернуть ошибку")
	}
}
