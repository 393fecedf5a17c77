package recordfile

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀) - 適用於大多數檔案
	FileModeReadOnly fs.FileMode = 0644

	// rw------- (只有擁有者可讀寫) - 適用於私鑰、機密檔
	FileModePrivate fs.FileMode = 0600
)

// maxLineSize 單行最大長度
const maxLineSize = 1 << 20

// ErrStop 由 ReadLines 的 callback 回傳，表示正常結束讀取 (不視為錯誤)
var ErrStop = errors.New("recordfile: stop reading")

// File 是以「一行一筆紀錄」為單位的文字檔
type File struct {
	file   *os.File
	writer *bufio.Writer
}

// Create 建立或截斷檔案並以寫入模式開啟
// O_WRONLY 只寫
// O_CREATE 如果文件不存在則建立
// O_TRUNC 開啟時清空原內容 (整檔覆寫，不保留舊版本)
func Create(path string, perm fs.FileMode) (*File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}
	return &File{file: file, writer: bufio.NewWriter(file)}, nil
}

// Open 以唯讀模式開啟既有檔案
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{file: file}, nil
}

// WriteLine 寫入一行 (自動補上換行)
func (f *File) WriteLine(line string) error {
	if f.writer == nil {
		return errors.New("recordfile: file not opened for writing")
	}
	if _, err := f.writer.WriteString(line); err != nil {
		return err
	}
	return f.writer.WriteByte('\n')
}

// Sync 將緩衝內容刷入硬碟
func (f *File) Sync() error {
	if f.writer != nil {
		if err := f.writer.Flush(); err != nil {
			return err
		}
	}
	return f.file.Sync()
}

// Close 刷新緩衝並關閉檔案
func (f *File) Close() error {
	var flushErr error
	if f.writer != nil {
		flushErr = f.writer.Flush()
	}
	return errors.Join(flushErr, f.file.Close())
}

// ReadLines 逐行讀取檔案
// callback 收到行號 (從 1 開始) 與不含換行的內容；
// 回傳 ErrStop 會提前結束且 ReadLines 回傳 nil，其他 error 會原樣回傳。
func (f *File) ReadLines(callback func(lineNo int, line string) error) error {
	scanner := bufio.NewScanner(f.file)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := callback(lineNo, scanner.Text()); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return scanner.Err()
}
